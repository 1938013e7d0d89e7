package lexical

import (
	"regexp"
	"strings"
	"unicode"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

// Treebank-style rewrite rules. Each rule pads the tokens it isolates with
// spaces; the result is split on whitespace.
var (
	startingQuotes = []rewrite{
		{regexp.MustCompile("([«“‘„]|`+)"), " $1 "},
		{regexp.MustCompile(`^"`), "``"},
		{regexp.MustCompile("(``)"), " $1 "},
		{regexp.MustCompile(`([ (\[{<])("|'')`), "$1 `` "},
	}

	punctuation = []rewrite{
		{regexp.MustCompile(`([:,])([^\d])`), " $1 $2"},
		{regexp.MustCompile(`([:,])$`), " $1 "},
		{regexp.MustCompile(`\.{2,}`), " $0 "},
		{regexp.MustCompile(`[;@#$%&]`), " $0 "},
		{regexp.MustCompile(`([^.])(\.)([\])}>"']*)\s*$`), "$1 $2$3 "},
		{regexp.MustCompile(`[?!]`), " $0 "},
		{regexp.MustCompile(`([^'])' `), "$1 ' "},
		{regexp.MustCompile(`[*]`), " $0 "},
	}

	brackets = rewrite{regexp.MustCompile(`[\]\[(){}<>]`), " $0 "}
	dashes   = rewrite{regexp.MustCompile(`--`), " -- "}

	endingQuotes = []rewrite{
		{regexp.MustCompile(`([»”’])`), " $1 "},
		{regexp.MustCompile(`"`), " '' "},
		{regexp.MustCompile(`(\S)('')`), "$1 $2 "},
		{regexp.MustCompile(`([^' ])('[sS]|'[mM]|'[dD]|') `), "$1 $2 "},
		{regexp.MustCompile(`([^' ])('ll|'LL|'re|'RE|'ve|'VE|n't|N'T) `), "$1 $2 "},
	}

	contractions = []rewrite{
		{regexp.MustCompile(`(?i)\b(can)(not)\b`), " $1 $2 "},
		{regexp.MustCompile(`(?i)\b(d)('ye)\b`), " $1 $2 "},
		{regexp.MustCompile(`(?i)\b(gim)(me)\b`), " $1 $2 "},
		{regexp.MustCompile(`(?i)\b(gon)(na)\b`), " $1 $2 "},
		{regexp.MustCompile(`(?i)\b(got)(ta)\b`), " $1 $2 "},
		{regexp.MustCompile(`(?i)\b(lem)(me)\b`), " $1 $2 "},
		{regexp.MustCompile(`(?i)\b(wan)(na)\b`), " $1 $2 "},
	}

	// termPattern matches scoring terms: runs of two or more word characters.
	termPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)
)

// Tokenize splits text into word tokens the way a Penn Treebank tokenizer
// does after sentence splitting: punctuation, brackets, quotes and clitics
// become their own tokens and sentence-final periods are separated while
// inner periods (abbreviations, decimals, file names) stay attached.
// Case is preserved.
func Tokenize(text string) []string {
	var tokens []string
	for _, sentence := range splitSentences(text) {
		tokens = append(tokens, tokenizeSentence(sentence)...)
	}
	return tokens
}

func tokenizeSentence(s string) []string {
	for _, r := range startingQuotes {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	s = splitLoneApostrophes(s)
	for _, r := range punctuation {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	s = brackets.re.ReplaceAllString(s, brackets.repl)
	s = dashes.re.ReplaceAllString(s, dashes.repl)

	s = " " + s + " "
	for _, r := range endingQuotes {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	for _, r := range contractions {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return strings.Fields(s)
}

// splitLoneApostrophes detaches an apostrophe from a following one-character
// word, as in "'x", unless the character starts a clitic (m, t, s, d, n).
func splitLoneApostrophes(s string) string {
	if !strings.ContainsRune(s, '\'') {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		b.WriteRune(r)
		if r != '\'' || i+1 >= len(runes) {
			continue
		}
		next := runes[i+1]
		if !isWordRune(next) || strings.ContainsRune("mtsdnMTSDN", next) {
			continue
		}
		if i+2 < len(runes) && isWordRune(runes[i+2]) {
			continue
		}
		b.WriteRune(' ')
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// splitSentences breaks text after '.', '!' or '?' (plus any closing quotes
// or brackets) when followed by whitespace and an upper-case letter, digit
// or opening quote.
func splitSentences(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		end := i + 1
		for end < len(runes) && isCloser(runes[end]) {
			end++
		}
		next := end
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			next++
		}
		if next == end || next >= len(runes) {
			continue
		}
		if r := runes[next]; unicode.IsUpper(r) || unicode.IsDigit(r) || r == '"' || r == '\'' || r == '(' {
			sentences = append(sentences, string(runes[start:end]))
			start = next
			i = next - 1
		}
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func isTerminal(r rune) bool { return r == '.' || r == '!' || r == '?' }

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '}', '>':
		return true
	}
	return false
}

// Terms returns the lower-cased scoring terms of text used by the TF-IDF and
// BM25 vocabularies: runs of two or more letters, digits or underscores.
func Terms(text string) []string {
	matches := termPattern.FindAllString(strings.ToLower(text), -1)
	if matches == nil {
		return []string{}
	}
	return matches
}
