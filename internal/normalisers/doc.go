// Package normalisers provides TextNormaliser implementations applied to
// pattern heading content while the corpus is composed. Normalisation is
// opt-in (corpus.strip_markdown); without it heading content is used verbatim.
package normalisers
