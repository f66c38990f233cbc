package scraper

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// noise lists elements whose text never counts as article content.
const noise = "script, style, nav, header, footer"

// Extract returns the article text of an HTML document: the trimmed text of
// every non-empty <p>, joined by single spaces, after noise elements are
// dropped. The result is cut to maxChars characters; maxChars <= 0 keeps
// everything.
func Extract(body []byte, contentType string, maxChars int) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("detect charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find(noise).Remove()

	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	return Truncate(strings.Join(parts, " "), maxChars), nil
}

// Truncate cuts s to at most n characters (runes).
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
