// Package html provides a TextNormaliser that strips inline HTML from
// pattern heading content, decoding entities and dropping scripts, styles
// and comments.
package html
