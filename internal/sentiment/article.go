package sentiment

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fillerPhrases are boilerplate fragments that article pages embed in
// their paragraph flow. Paragraphs containing one carry no sentiment
// signal and are dropped whole.
var fillerPhrases = []string{
	"oops, something went wrong",
	"subscribe to",
	"sign up for",
	"sign in to",
	"read full article",
	"continue reading",
	"all rights reserved",
	"terms of service",
	"privacy policy",
	"click here",
	"related articles",
	"advertisement",
	"cookies",
}

// extractText pulls the readable article body out of an HTML page by
// harvesting <p> elements
func extractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := cleanParagraph(sel.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(paragraphs, " "), nil
}

// cleanParagraph normalizes one paragraph and drops filler
func cleanParagraph(text string) string {
	// Fold non-breaking and zero-width characters to plain spaces
	text = strings.Map(func(r rune) rune {
		switch r {
		case '\u00a0', '\u200b', '\u200c', '\u200d', '\ufeff':
			return ' '
		}
		return r
	}, text)

	// Collapse whitespace
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}

	lower := strings.ToLower(text)
	for _, phrase := range fillerPhrases {
		if strings.Contains(lower, phrase) {
			return ""
		}
	}

	return text
}
