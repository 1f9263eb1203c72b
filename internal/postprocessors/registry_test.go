package postprocessors

import (
	"errors"
	"testing"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/postprocessors/chunker"
)

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	r.Register("test", func(cfg map[string]any) (driven.PostProcessor, error) {
		name, _ := cfg["name"].(string)
		return &mockProcessor{name: name}, nil
	})

	if !r.Has("test") {
		t.Fatal("expected 'test' to be registered")
	}
	proc, err := r.Build("test", map[string]any{"name": "custom"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if proc.Name() != "custom" {
		t.Errorf("expected name 'custom', got %q", proc.Name())
	}
}

func TestRegistry_Build_Unknown(t *testing.T) {
	_, err := NewRegistry().Build("missing", nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register("b", nil)
	r.Register("a", nil)

	names := r.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("expected sorted [a b], got %v", names)
	}
}

func TestBuildChunker(t *testing.T) {
	tests := []struct {
		name      string
		cfg       map[string]any
		wantMax   int
		wantOver  int
		wantError bool
	}{
		{"nil config uses defaults", nil, 800, 100, false},
		{"int values", map[string]any{"max_tokens": 300, "overlap": 30}, 300, 30, false},
		{"toml int64 values", map[string]any{"max_tokens": int64(400), "overlap": int64(0)}, 400, 0, false},
		{"json float values", map[string]any{"max_tokens": float64(500)}, 500, 100, false},
		{"zero max tokens", map[string]any{"max_tokens": 0}, 0, 0, true},
		{"negative overlap", map[string]any{"overlap": -5}, 0, 0, true},
		{"string value", map[string]any{"max_tokens": "800"}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc, err := buildChunker(tt.cfg, nil)
			if tt.wantError {
				if !errors.Is(err, domain.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			c := proc.(*chunker.Processor)
			if c.MaxTokens() != tt.wantMax || c.Overlap() != tt.wantOver {
				t.Errorf("expected %d/%d, got %d/%d", tt.wantMax, tt.wantOver, c.MaxTokens(), c.Overlap())
			}
		})
	}
}
