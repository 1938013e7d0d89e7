package driven

import (
	"context"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

// CorpusSource reads the privacy design pattern corpus.
type CorpusSource interface {
	// Load returns the pattern records in file order.
	// A missing or malformed corpus returns an error wrapping domain.ErrCorpusInvalid.
	Load(ctx context.Context) ([]domain.PatternRecord, error)

	// Location describes where the corpus is read from (for logs and messages).
	Location() string
}

// CorpusWatcher notifies when the corpus changes on disk.
type CorpusWatcher interface {
	// Watch calls onChange after each change until ctx is cancelled.
	Watch(ctx context.Context, onChange func()) error
}
