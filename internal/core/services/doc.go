// Package services implements the driving port interfaces.
// Services contain the feature engine (corpus composition, TF-IDF, BM25,
// semantic similarity and feature assembly) and orchestrate calls to driven
// ports (adapters) such as embedding encoders, the embedding cache and the
// external ranker.
//
// Services are pure Go with no CGO or external process dependencies.
package services
