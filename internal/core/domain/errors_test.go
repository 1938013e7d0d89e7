package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrCorpusInvalid", ErrCorpusInvalid},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrIndexMismatch", ErrIndexMismatch},
		{"ErrEmptyQuery", ErrEmptyQuery},
		{"ErrStoryKeyOutOfRange", ErrStoryKeyOutOfRange},
		{"ErrRankerFailed", ErrRankerFailed},
		{"ErrMalformedRankerOutput", ErrMalformedRankerOutput},
		{"ErrRankerUnavailable", ErrRankerUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading patterns.json: %w", ErrCorpusInvalid)
	assert.True(t, errors.Is(wrapped, ErrCorpusInvalid))
	assert.False(t, errors.Is(wrapped, ErrNotFound))

	double := fmt.Errorf("rank: %w", fmt.Errorf("exit status 1: %w", ErrRankerFailed))
	assert.True(t, errors.Is(double, ErrRankerFailed))
}

func TestErrors_Distinct(t *testing.T) {
	assert.NotEqual(t, ErrRankerFailed, ErrMalformedRankerOutput)
	assert.NotEqual(t, ErrEmptyQuery, ErrInvalidInput)
}
