package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.Equal(t, []string{"application/pdf"}, normaliser.SupportedMIMETypes())
	assert.Equal(t, 50, normaliser.Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_NotAPDF(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.RawDocument{
		Path:     "npaop.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("this is not a pdf"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_Empty(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.RawDocument{Path: "empty.pdf"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
