package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrIndexNotBuilt", ErrIndexNotBuilt},
		{"ErrCorpusBuild", ErrCorpusBuild},
		{"ErrIndexLoad", ErrIndexLoad},
		{"ErrEmbeddingCall", ErrEmbeddingCall},
		{"ErrGenerationCall", ErrGenerationCall},
		{"ErrRetrievalInconsistency", ErrRetrievalInconsistency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestError_IsMatchesKindSentinel(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     ErrorKind
	}{
		{"corpus build", NewCorpusBuildError("embed", cause), ErrCorpusBuild, KindCorpusBuild},
		{"index load", NewIndexLoadError("read manifest", cause), ErrIndexLoad, KindIndexLoad},
		{"embedding call", NewEmbeddingCallError("embed query", cause), ErrEmbeddingCall, KindEmbeddingCall},
		{"generation call", NewGenerationCallError("chat", cause), ErrGenerationCall, KindGenerationCall},
		{"retrieval", NewRetrievalInconsistencyError(3, 4), ErrRetrievalInconsistency, KindRetrievalInconsistency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.False(t, errors.Is(tt.err, ErrNotFound))
		})
	}
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := NewCorpusBuildError("persist", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "corpus build failed: persist: disk full", err.Error())
}

func TestError_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("startup: %w", NewIndexLoadError("verify", nil))

	assert.ErrorIs(t, err, ErrIndexLoad)
	assert.Equal(t, KindIndexLoad, KindOf(err))

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "verify", de.Op)
}

func TestRetrievalInconsistencyError_Message(t *testing.T) {
	err := NewRetrievalInconsistencyError(10, 9)
	assert.Equal(t, "retrieval inconsistency: 10 chunks vs 9 vectors", err.Error())
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorKind(0), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(0), KindOf(nil))
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "CorpusBuildError", KindCorpusBuild.String())
	assert.Equal(t, "IndexLoadError", KindIndexLoad.String())
	assert.Equal(t, "EmbeddingCallError", KindEmbeddingCall.String())
	assert.Equal(t, "GenerationCallError", KindGenerationCall.String())
	assert.Equal(t, "RetrievalInconsistencyError", KindRetrievalInconsistency.String())
	assert.Equal(t, "UnknownError", ErrorKind(99).String())
}
