package classify

import (
	"strings"

	"github.com/veldt-labs/modex/internal/domain"
)

// BuildPrompt assembles the classification instruction: the rubric, the
// retrieved examples with their labels, the quoted input, and the exact-label
// instruction. Identical inputs always yield a byte-identical prompt.
func BuildPrompt(text string, retrieved []domain.Retrieved, contentType string) string {
	if contentType == "" {
		contentType = "text"
	}

	var b strings.Builder
	b.WriteString("You are a content moderation classifier. Classify the given ")
	b.WriteString(contentType)
	b.WriteString(" into exactly one of three categories:\n")
	b.WriteString("- \"Hate Speech\": attacks, dehumanizes or calls for harm against a person or group based on identity.\n")
	b.WriteString("- \"Moderate\": hostile, insulting or divisive content that does not rise to hate speech.\n")
	b.WriteString("- \"Safe\": content with no hostile or harmful intent.\n\n")

	if len(retrieved) == 0 {
		b.WriteString("No relevant examples found.\n")
	} else {
		b.WriteString("Context, similar previously labeled examples:\n")
		for _, r := range retrieved {
			b.WriteString("\"")
			b.WriteString(r.Text)
			b.WriteString("\"")
			if r.Label != "" {
				b.WriteString(" - ")
				b.WriteString(string(r.Label))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nUser Input: \"")
	b.WriteString(text)
	b.WriteString("\"\n\n")
	b.WriteString("Respond with exactly one of: \"Hate Speech\", \"Moderate\", \"Safe\". ")
	b.WriteString("Output only the classification.")
	return b.String()
}
