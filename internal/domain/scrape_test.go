package domain

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPreview_ShortTextUnchanged(t *testing.T) {
	item := ScrapedItem{Text: "a short page"}
	if got := item.Preview(); got != "a short page" {
		t.Errorf("Preview() = %q", got)
	}

	exact := ScrapedItem{Text: strings.Repeat("a", PreviewLen)}
	if got := exact.Preview(); got != exact.Text {
		t.Errorf("text of exactly PreviewLen bytes must not be truncated")
	}
}

func TestPreview_TruncatesLongText(t *testing.T) {
	item := ScrapedItem{Text: strings.Repeat("a", PreviewLen+50)}
	got := item.Preview()
	if got != strings.Repeat("a", PreviewLen)+"..." {
		t.Errorf("Preview() = %q", got)
	}
}

func TestPreview_DoesNotSplitRunes(t *testing.T) {
	// "日" is 3 bytes; PreviewLen is not a multiple of 3, so a byte cut
	// would land mid-rune.
	item := ScrapedItem{Text: strings.Repeat("日", 100)}
	got := item.Preview()
	if !utf8.ValidString(got) {
		t.Fatalf("preview contains a split rune: %q", got)
	}
	if !strings.HasSuffix(got, "日...") {
		t.Errorf("unexpected preview tail: %q", got[len(got)-12:])
	}
	if len(got) > PreviewLen+len("...") {
		t.Errorf("preview too long: %d bytes", len(got))
	}
}
