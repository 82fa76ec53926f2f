package provider

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var quotePairs = [][2]string{
	{`"`, `"`},
	{`'`, `'`},
	{"“", "”"},
	{"‘", "’"},
	{"`", "`"},
}

// cleanOutput normalizes raw model output into a bare phrase: markup is
// flattened to text, whitespace collapsed and wrapping quotes removed.
func cleanOutput(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	if hasMarkup(text) {
		text = flattenMarkup(text)
	}

	text = strings.Join(strings.Fields(text), " ")
	return stripQuotes(text)
}

// hasMarkup reports whether s contains at least one HTML tag or comment.
func hasMarkup(s string) bool {
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken, html.CommentToken:
			return true
		}
	}
}

func flattenMarkup(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}

	doc.Find("script, style").Remove()
	doc.Find("p, div, li, br, h1, h2, h3, h4, h5, h6, blockquote").AfterHtml(" ")

	return doc.Find("body").Text()
}

func stripQuotes(s string) string {
	for _, pair := range quotePairs {
		if len(s) > len(pair[0])+len(pair[1]) && strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			inner := s[len(pair[0]) : len(s)-len(pair[1])]
			// A quote inside means the quotes are part of the phrase.
			if !strings.Contains(inner, pair[0]) && !strings.Contains(inner, pair[1]) {
				return strings.TrimSpace(inner)
			}
		}
	}
	return s
}
