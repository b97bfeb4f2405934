package domain

import (
	"strings"

	"golang.org/x/net/html"
)

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// SanitizeDescription strips every tag, comment and doctype from s. Text is
// kept with &, < and > escaped, so the result never contains markup and
// sanitizing it again returns it unchanged.
func SanitizeDescription(s string) string {
	if !strings.ContainsAny(s, "<>&") {
		return s
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF is the only error a strings.Reader can produce.
			return b.String()
		case html.TextToken:
			textEscaper.WriteString(&b, string(z.Text()))
		}
	}
}
