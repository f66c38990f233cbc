package pipeline

import (
	"fmt"
	"strings"
)

// Article is the extracted text of one search result.
type Article struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Aggregate formats articles as numbered blocks ("Article N:\n<content>\n\n")
// joined by a newline, in input order. Empty input gives "".
func Aggregate(articles []Article) string {
	blocks := make([]string, len(articles))
	for i, a := range articles {
		blocks[i] = fmt.Sprintf("Article %d:\n%s\n\n", i+1, a.Content)
	}
	return strings.Join(blocks, "\n")
}
