package fallback

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxResponseLength = 1500
	MoreDetailsHint   = "(ask for more details)"

	maxBullets = 5
)

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// Format collapses runs of blank lines and shortens overlong responses to
// their first paragraph plus a few bullet points. Format is idempotent.
func Format(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) <= MaxResponseLength {
		return text
	}

	paragraphs := strings.SplitN(text, "\n\n", 2)
	parts := []string{strings.TrimSpace(paragraphs[0])}

	if len(paragraphs) > 1 {
		var bullets []string
		for _, line := range strings.Split(paragraphs[1], "\n") {
			line = strings.TrimSpace(line)
			if !isBullet(line) {
				continue
			}

			bullets = append(bullets, line)
			if len(bullets) == maxBullets {
				break
			}
		}

		if len(bullets) > 0 {
			parts = append(parts, strings.Join(bullets, "\n"))
		}
	}

	parts = append(parts, MoreDetailsHint)

	return strings.Join(parts, "\n\n")
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "-") ||
		strings.HasPrefix(line, "•") ||
		strings.HasPrefix(line, "*")
}
