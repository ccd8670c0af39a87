package fallback

import (
	"strings"

	"campusbot/app/domain"

	"github.com/elliotchance/pie/v2"
)

// ExtractContext joins the lowercased content of the last k messages of history.
func ExtractContext(history []domain.Message, k int) string {
	if k <= 0 || len(history) == 0 {
		return ""
	}

	if len(history) > k {
		history = history[len(history)-k:]
	}

	contents := pie.Map(history, func(msg domain.Message) string {
		return strings.ToLower(msg.Content)
	})

	return strings.Join(contents, " ")
}
