package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
	"github.com/custodia-labs/ppltr/internal/logger"
)

// CorpusOptions controls how pattern records are composed into a corpus.
type CorpusOptions struct {
	// Normaliser rewrites heading content before composition. Nil keeps it verbatim.
	Normaliser driven.TextNormaliser
}

// BuildCorpus composes the three facets of every record, in record order.
// An empty record list is invalid.
func BuildCorpus(records []domain.PatternRecord, opts CorpusOptions) (*domain.Corpus, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no patterns", domain.ErrCorpusInvalid)
	}

	patterns := make([]domain.Pattern, len(records))
	seen := make(map[string]int, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.Filename) == "" {
			return nil, fmt.Errorf("%w: record %d has no filename", domain.ErrCorpusInvalid, i)
		}
		if j, dup := seen[r.Slug()]; dup {
			logger.Warn("Duplicate pattern %q at positions %d and %d", r.Slug(), j, i)
		}
		seen[r.Slug()] = i

		patterns[i] = domain.Pattern{
			ID:       r.Slug(),
			Title:    r.HumanizedName(),
			Excerpt:  strings.TrimSpace(r.Excerpt),
			FullText: composeFullText(r, opts.Normaliser),
		}
	}
	return domain.NewCorpus(patterns, records), nil
}

// LoadCorpus reads records from source and builds the corpus.
func LoadCorpus(ctx context.Context, source driven.CorpusSource, opts CorpusOptions) (*domain.Corpus, error) {
	logger.Section("Corpus")
	records, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus from %s: %w", source.Location(), err)
	}
	corpus, err := BuildCorpus(records, opts)
	if err != nil {
		return nil, fmt.Errorf("build corpus from %s: %w", source.Location(), err)
	}
	logger.Info("Loaded %d patterns from %s", corpus.Len(), source.Location())
	return corpus, nil
}

// composeFullText joins the humanized filename, the excerpt and each heading's
// content, terminating every segment with a period.
func composeFullText(r domain.PatternRecord, n driven.TextNormaliser) string {
	var b strings.Builder
	appendSegment(&b, r.HumanizedName())
	appendSegment(&b, strings.TrimSpace(r.Excerpt))
	for _, h := range r.Headings {
		content := h.Content
		if n != nil {
			content = n.Normalise(content)
		}
		appendSegment(&b, strings.TrimSpace(content))
	}
	return b.String()
}

func appendSegment(b *strings.Builder, segment string) {
	b.WriteString(segment)
	if !strings.HasSuffix(b.String(), ".") {
		b.WriteString(". ")
	}
}
