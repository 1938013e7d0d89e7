package domain

// FeatureCount is the fixed length of every feature vector.
const FeatureCount = 26

// Zero-based positions within a FeatureVector. Feature files number them from 1.
const (
	FeatCoveredCount = iota
	FeatCoveredRatio
	FeatQueryLength
	FeatQueryIDF
	FeatTFSum
	FeatTFMin
	FeatTFMax
	FeatTFMean
	FeatTFVar
	FeatNormTFSum
	FeatNormTFMin
	FeatNormTFMax
	FeatNormTFMean
	FeatNormTFVar
	FeatTFIDFSum
	FeatTFIDFMin
	FeatTFIDFMax
	FeatTFIDFMean
	FeatTFIDFVar
	FeatBM25
	FeatCosFullTextA
	FeatCosTitleA
	FeatCosExcerptA
	FeatCosFullTextB
	FeatCosTitleB
	FeatCosExcerptB
)

// FeatureVector is the ordered feature layout for one (query, pattern) pair.
type FeatureVector [FeatureCount]float64

// Lexical returns features 1-20, the part that depends only on text statistics.
func (v FeatureVector) Lexical() []float64 {
	return v[:FeatCosFullTextA]
}

// Semantic returns features 21-26, the embedding similarities.
func (v FeatureVector) Semantic() []float64 {
	return v[FeatCosFullTextA:]
}

// FeatureRow is one line of a feature file.
type FeatureRow struct {
	// Label is the relevance placeholder (constant, not a supervised target).
	Label int

	// QID groups rows belonging to the same query.
	QID string

	// PatternID is the corpus slug of the pattern.
	PatternID string

	// DocID is the document identifier written after #docid=.
	DocID string

	// Features is the feature vector.
	Features FeatureVector
}

// DefaultLabel is the constant label written for unlabelled rows.
const DefaultLabel = 1

// Recommendation is the ranked pattern list for one query.
type Recommendation struct {
	// QID is the ranker grouping identifier.
	QID string

	// DocIDs are the ranked document identifiers, best first.
	DocIDs []string

	// Patterns are the matching corpus records, when resolvable.
	Patterns []PatternRecord
}
