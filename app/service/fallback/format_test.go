package fallback

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func longResponse(bullets int) string {
	var builder strings.Builder
	builder.WriteString("Intro paragraph.\n\n")

	for i := 1; i <= bullets; i++ {
		builder.WriteString(fmt.Sprintf("- item %d %s\n", i, strings.Repeat("x", 200)))
	}

	builder.WriteString("\nClosing words.")

	return builder.String()
}

func TestFormat_CollapsesBlankLines(t *testing.T) {
	assert.Equal(t, "a\n\nb\n\nc", Format("a\n\n\n\nb\r\n\r\n\r\nc\n\n"))
	assert.Equal(t, "a\nb", Format("  a\nb  "))
}

func TestFormat_ShortTextUnchanged(t *testing.T) {
	text := "Line one\n\n- bullet\n- bullet"
	assert.Equal(t, text, Format(text))
}

func TestFormat_TruncatesLongText(t *testing.T) {
	result := Format(longResponse(10))

	lines := strings.Split(result, "\n")
	assert.Equal(t, "Intro paragraph.", lines[0])
	assert.Equal(t, "", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "- item 1 "))
	assert.True(t, strings.HasPrefix(lines[6], "- item 5 "))
	assert.Equal(t, MoreDetailsHint, lines[len(lines)-1])
	assert.NotContains(t, result, "item 6")
	assert.NotContains(t, result, "Closing words")
}

func TestFormat_LongTextWithoutBullets(t *testing.T) {
	text := "First.\n\n" + strings.Repeat("word ", 400)
	assert.Equal(t, "First.\n\n"+MoreDetailsHint, Format(text))
}

func TestFormat_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"a\n\n\n\n\nb",
		"a\n \n\n\nb",
		longResponse(3),
		longResponse(12),
		strings.Repeat("y", 2000),
		strings.Repeat("z", 1600) + "\n\n* one\n• two\n- three",
		Default().Select("hi", nil).Text,
	}

	for _, in := range inputs {
		once := Format(in)
		assert.Equal(t, once, Format(once))
	}
}
