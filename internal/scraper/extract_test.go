package scraper

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtract_ParagraphsOnly(t *testing.T) {
	html := `<html><head><title>T</title><style>p{color:red}</style></head><body>
<header><p>Site header paragraph</p></header>
<nav><p>Menu</p></nav>
<div>Loose div text</div>
<p>  First paragraph.  </p>
<p>   </p>
<p>Second <b>bold</b> paragraph.<script>var p = "evil";</script></p>
<footer><p>Copyright</p></footer>
</body></html>`

	got, err := Extract([]byte(html), "text/html; charset=utf-8", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "First paragraph. Second bold paragraph."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExtract_NoParagraphs(t *testing.T) {
	got, err := Extract([]byte(`<html><body><div>only divs</div></body></html>`), "", 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestExtract_Truncates(t *testing.T) {
	html := "<p>" + strings.Repeat("a", 6000) + "</p>"
	got, _ := Extract([]byte(html), "text/html", 5000)
	if len(got) != 5000 {
		t.Errorf("expected 5000 characters, got %d", len(got))
	}
}

func TestExtract_Latin1(t *testing.T) {
	// "café" in ISO-8859-1
	body := []byte("<p>caf\xe9</p>")
	got, err := Extract(body, "text/html; charset=iso-8859-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "café" {
		t.Errorf("expected café, got %q", got)
	}
}

func TestTruncate_CountsRunes(t *testing.T) {
	s := strings.Repeat("é", 10)
	got := Truncate(s, 4)
	if utf8.RuneCountInString(got) != 4 || !utf8.ValidString(got) {
		t.Errorf("expected 4 valid runes, got %q", got)
	}
	if Truncate("short", 10) != "short" {
		t.Error("expected short string untouched")
	}
	if Truncate("keep", 0) != "keep" {
		t.Error("expected n <= 0 to keep everything")
	}
}
