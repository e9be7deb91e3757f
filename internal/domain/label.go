package domain

import (
	"fmt"
	"strings"
)

// Label is one of the three canonical classification outcomes.
type Label string

const (
	// LabelHateSpeech marks content targeting a person or group with hate.
	LabelHateSpeech Label = "Hate Speech"
	// LabelModerate marks borderline content that is hostile but not hateful.
	LabelModerate Label = "Moderate"
	// LabelSafe marks content with no policy violation.
	LabelSafe Label = "Safe"
)

// labelPriority is the scan order for verbose model responses. "Hate Speech"
// comes first so a response mentioning several labels resolves to the
// strictest one.
var labelPriority = []Label{LabelHateSpeech, LabelModerate, LabelSafe}

// Labels returns the canonical labels in priority order.
func Labels() []Label {
	out := make([]Label, len(labelPriority))
	copy(out, labelPriority)
	return out
}

// NormalizeResponse maps a raw model response onto exactly one canonical
// label. A short response (three whitespace-separated tokens or fewer) is
// matched verbatim, tolerating case and trailing punctuation. A longer
// response, typically the model explaining itself, is scanned for the canonical
// strings in priority order. A response matching nothing fails with
// ErrUnrecognizedLabel instead of being passed through.
func NormalizeResponse(raw string) (Label, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("empty response: %w", ErrUnrecognizedLabel)
	}

	if len(strings.Fields(trimmed)) <= 3 {
		if label, ok := matchVerbatim(trimmed); ok {
			return label, nil
		}
	}

	lower := strings.ToLower(trimmed)
	for _, label := range labelPriority {
		if strings.Contains(lower, strings.ToLower(string(label))) {
			return label, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnrecognizedLabel, clip(trimmed, 80))
}

func matchVerbatim(s string) (Label, bool) {
	cleaned := strings.Trim(s, "\"'`*.!: \t")
	for _, label := range labelPriority {
		if strings.EqualFold(cleaned, string(label)) {
			return label, true
		}
	}
	return "", false
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
