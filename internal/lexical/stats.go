package lexical

import (
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the aggregate statistics of a set of values.
type Summary struct {
	Sum  float64
	Min  float64
	Max  float64
	Mean float64
	Var  float64 // population variance
}

// Aggregate summarizes values. An empty input yields the zero Summary.
func Aggregate(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	mean, variance := stat.PopMeanVariance(values, nil)
	return Summary{
		Sum:  floats.Sum(values),
		Min:  floats.Min(values),
		Max:  floats.Max(values),
		Mean: mean,
		Var:  variance,
	}
}

// Scale divides every statistic by d. A zero divisor yields the zero Summary.
func (s Summary) Scale(d float64) Summary {
	if d == 0 {
		return Summary{}
	}
	return Summary{Sum: s.Sum / d, Min: s.Min / d, Max: s.Max / d, Mean: s.Mean / d, Var: s.Var / d}
}

// Values returns the statistics in feature order: sum, min, max, mean, variance.
func (s Summary) Values() [5]float64 {
	return [5]float64{s.Sum, s.Min, s.Max, s.Mean, s.Var}
}

// Policy selects the tokenization applied by each lexical feature family.
type Policy struct {
	// FilterQuery drops stopwords from query tokens before coverage, IDF and
	// TF are computed.
	FilterQuery bool
	// FilterPattern drops stopwords from the pattern tokens counted by TF.
	FilterPattern bool
	// FoldCaseTF makes TF token matching case-insensitive.
	FoldCaseTF bool
}

// DefaultPolicy filters stopwords from queries only and counts TF matches
// case-sensitively against the full pattern token stream.
func DefaultPolicy() Policy {
	return Policy{FilterQuery: true}
}

// Analyzer computes lexical statistics under a Policy.
type Analyzer struct {
	policy Policy
}

// NewAnalyzer creates an analyzer for the given policy.
func NewAnalyzer(policy Policy) *Analyzer {
	return &Analyzer{policy: policy}
}

// Policy returns the analyzer's tokenization policy.
func (a *Analyzer) Policy() Policy {
	return a.policy
}

// QueryTokens returns the query tokens used by coverage, IDF and TF. With
// FilterQuery set the stopword-filtered text is tokenized again.
func (a *Analyzer) QueryTokens(query string) []string {
	if a.policy.FilterQuery {
		return Tokenize(RemoveStopwords(query))
	}
	return Tokenize(query)
}

// QueryLength returns the effective query length: the number of characters
// in the stopword-filtered query, re-joined with single spaces.
func (a *Analyzer) QueryLength(query string) int {
	if a.policy.FilterQuery {
		return utf8.RuneCountInString(RemoveStopwords(query))
	}
	return utf8.RuneCountInString(strings.Join(Tokenize(query), " "))
}

// PatternTokens returns the pattern tokens counted by TF features.
func (a *Analyzer) PatternTokens(pattern string) []string {
	tokens := Tokenize(pattern)
	if a.policy.FilterPattern {
		tokens = FilterStopwords(tokens)
	}
	return tokens
}

// TF returns the ten term-frequency features of queryTokens against the
// tokenized pattern: sum, min, max, mean and variance of the per-token counts,
// then the same five divided by the pattern token count.
func (a *Analyzer) TF(queryTokens, patternTokens []string) [10]float64 {
	counts := make(map[string]int, len(patternTokens))
	for _, t := range patternTokens {
		if a.policy.FoldCaseTF {
			t = strings.ToLower(t)
		}
		counts[t]++
	}

	tf := make([]float64, len(queryTokens))
	for i, q := range queryTokens {
		if a.policy.FoldCaseTF {
			q = strings.ToLower(q)
		}
		tf[i] = float64(counts[q])
	}

	raw := Aggregate(tf)
	norm := raw.Scale(float64(len(patternTokens)))

	var out [10]float64
	r, n := raw.Values(), norm.Values()
	copy(out[:5], r[:])
	copy(out[5:], n[:])
	return out
}

// CoveredWords counts the query tokens that occur, case-insensitively and as
// a substring, anywhere in pattern. It returns the count and the ratio to the
// number of query tokens.
func CoveredWords(queryTokens []string, pattern string) (int, float64) {
	if len(queryTokens) == 0 {
		return 0, 0
	}
	lower := strings.ToLower(pattern)
	n := 0
	for _, q := range queryTokens {
		if strings.Contains(lower, strings.ToLower(q)) {
			n++
		}
	}
	return n, float64(n) / float64(len(queryTokens))
}

// GlobalIDF returns 1 divided by the number of distinct lower-cased query
// tokens occurring as a substring of at least one lower-cased pattern. The
// value does not depend on any individual pattern and is 0 when no token
// matches.
func GlobalIDF(queryTokens []string, patterns []string) float64 {
	lowered := make([]string, len(patterns))
	for i, p := range patterns {
		lowered[i] = strings.ToLower(p)
	}

	matched := make(map[string]struct{})
	for _, q := range queryTokens {
		q = strings.ToLower(q)
		if _, seen := matched[q]; seen {
			continue
		}
		for _, p := range lowered {
			if strings.Contains(p, q) {
				matched[q] = struct{}{}
				break
			}
		}
	}
	if len(matched) == 0 {
		return 0
	}
	return 1 / float64(len(matched))
}
