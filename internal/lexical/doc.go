// Package lexical implements the lexical statistics used as ranking features:
// word tokenization, English stopword removal, query-term coverage, the
// global query IDF scalar and per-pattern term-frequency statistics.
//
// Tokenization policy is explicit per feature family (see Policy). Coverage
// and IDF use stopword-filtered query tokens while TF counts run against the
// unfiltered pattern tokens; that asymmetry is part of the feature definition.
//
// Every statistic over an empty set, and every ratio with a zero denominator,
// is 0.
package lexical
