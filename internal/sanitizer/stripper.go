package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

type HTMLStripper struct {
	bm *bluemonday.Policy
}

// NewHTMLStripper return a new instance of blue monday policy
func NewHTMLStripper() *HTMLStripper {
	return &HTMLStripper{
		bm: bluemonday.StrictPolicy(),
	}
}

// StripHTML removes every tag. Entities in the result stay escaped.
func (hs *HTMLStripper) StripHTML(s string) string {
	return hs.bm.Sanitize(s)
}

// CleanText strips markup and returns plain text, so "Trinidad &amp; Tobago"
// style escaping does not leak into search queries. Surrounding whitespace is kept
// because it is part of what the user typed.
func (hs *HTMLStripper) CleanText(s string) string {
	if !strings.ContainsAny(s, "<>&") {
		return s
	}
	return html.UnescapeString(hs.bm.Sanitize(s))
}

// HTMLStripperer is the sanitizing surface handlers depend on
type HTMLStripperer interface {
	StripHTML(s string) string
	CleanText(s string) string
}
