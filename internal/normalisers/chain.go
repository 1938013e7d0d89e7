package normalisers

import (
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
	"github.com/custodia-labs/ppltr/internal/normalisers/html"
	"github.com/custodia-labs/ppltr/internal/normalisers/markdown"
)

// Chain applies normalisers in order.
type Chain []driven.TextNormaliser

// Normalise runs content through every normaliser of the chain.
func (c Chain) Normalise(content string) string {
	for _, n := range c {
		content = n.Normalise(content)
	}
	return content
}

// Markup strips inline HTML and then markdown syntax.
func Markup() Chain {
	return Chain{html.New(), markdown.New()}
}
