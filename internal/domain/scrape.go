package domain

import (
	"time"
	"unicode/utf8"
)

// PreviewLen bounds scraped-content previews, in bytes.
const PreviewLen = 200

// ScrapedItem is one piece of externally scraped web content.
type ScrapedItem struct {
	URL       string
	Text      string
	Timestamp *time.Time
	Metadata  map[string]any
}

// Preview returns the item text truncated for listing endpoints. The cut
// backs up to a rune boundary so a multi-byte character is never split.
func (s ScrapedItem) Preview() string {
	if len(s.Text) <= PreviewLen {
		return s.Text
	}
	cut := PreviewLen
	for cut > 0 && !utf8.RuneStart(s.Text[cut]) {
		cut--
	}
	return s.Text[:cut] + "..."
}

// ItemResult is the classification outcome for one scraped item.
type ItemResult struct {
	URL   string
	Text  string
	Label Label
}
