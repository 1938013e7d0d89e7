package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

func TestPatternService_Get(t *testing.T) {
	env := newTestEnv(t, testRecords())
	svc := NewPatternService(env.features)

	for _, id := range []string{
		"informed-consent",
		"informed-consent.md",
		"docid=informed-consent",
		"#docid=informed-consent",
		"Informed Consent",
		" informed-consent ",
	} {
		rec, err := svc.Get(id)
		require.NoError(t, err, id)
		assert.Equal(t, "informed-consent.md", rec.Filename, id)
	}

	_, err := svc.Get("unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPatternService_List(t *testing.T) {
	env := newTestEnv(t, testRecords())
	list := NewPatternService(env.features).List()
	require.Len(t, list, 3)
	assert.Equal(t, "data-minimization", list[0].ID)
	assert.Equal(t, "location granularity", list[2].Title)
}

func TestPatternService_FixedCorpus(t *testing.T) {
	corpus, err := BuildCorpus(testRecords()[:1], CorpusOptions{})
	require.NoError(t, err)

	svc := NewPatternService(FixedCorpus(corpus))
	require.Len(t, svc.List(), 1)

	rec, err := svc.Get("data-minimization.md")
	require.NoError(t, err)
	assert.Equal(t, "Collect and store only the personal data that is strictly needed.", rec.Excerpt)
}
