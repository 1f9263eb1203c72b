package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func reset(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
		mu.Lock()
		sink = zap.NewNop()
		mu.Unlock()
	})
}

func TestSetVerbose(t *testing.T) {
	reset(t)

	SetVerbose(false)
	assert.False(t, IsVerbose())
	SetVerbose(true)
	assert.True(t, IsVerbose())
}

func TestConsole_WhenVerbose(t *testing.T) {
	reset(t)
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")
	Info("info message %d", 42)
	Warn("warning message")
	Section("Test Section")

	assert.Equal(t, "[DEBUG] test message arg\n[INFO] info message 42\n[WARN] warning message\n\n=== Test Section ===\n", buf.String())
}

func TestConsole_WhenNotVerbose(t *testing.T) {
	reset(t)
	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("hidden")
	Section("hidden")
	assert.Empty(t, buf.String())

	Error("boom %d", 1)
	assert.Equal(t, "[ERROR] boom 1\n", buf.String())
}

func TestSink_ReceivesAllLevels(t *testing.T) {
	reset(t)
	SetOutput(&bytes.Buffer{})
	core, logs := observer.New(zapcore.DebugLevel)
	SetSink(core)

	Debug("d")
	Info("i %s", "x")
	Warn("w")
	Error("e")

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, "i x", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestConfigure_WritesJSONFile(t *testing.T) {
	reset(t)
	SetOutput(&bytes.Buffer{})
	path := filepath.Join(t.TempDir(), "weldsafe.log")

	closeFn, err := Configure(Options{File: path})
	require.NoError(t, err)
	Info("index loaded")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"index loaded"`)
	assert.Contains(t, string(data), `"level":"INFO"`)
}

func TestEvent(t *testing.T) {
	reset(t)
	core, logs := observer.New(zapcore.InfoLevel)
	SetSink(core)

	Event("chat", zap.Int64("user_id", 7), zap.String("role", "question"))

	entries := logs.FilterMessage("chat").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].ContextMap()["user_id"])
	assert.NoError(t, Sync())
}

func TestConfigure_EmptyPath(t *testing.T) {
	closeFn, err := Configure(Options{})
	require.NoError(t, err)
	assert.NoError(t, closeFn())
}

func TestConcurrentAccess(t *testing.T) {
	reset(t)
	SetOutput(&bytes.Buffer{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
		}()
	}
	wg.Wait()
}
