package driven

import "context"

// Ranker runs the external learning-to-rank model over a feature file.
// The contract is the file format in both directions; the ranker writes
// rows sorted best-first per query to outputPath.
type Ranker interface {
	// Rank scores featurePath and writes the ranked rows to outputPath.
	// A failed process returns an error wrapping domain.ErrRankerFailed.
	Rank(ctx context.Context, featurePath, outputPath string) error
}
