package fallback

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"campusbot/app/domain"

	"github.com/elliotchance/pie/v2"
)

const (
	shortMessageLength = 10
	minRepeatHistory   = 2
)

var greetingPattern = regexp.MustCompile(`^(hi|hiya|hello|hey|greetings|howdy|hola|good (morning|afternoon|evening))\b`)

type input struct {
	// raw is the trimmed message as typed.
	raw     string
	text    string
	context string
	history []domain.Message
}

type rule struct {
	topic string
	match func(t *Table, in *input) bool
}

// Rules checked before any topic, in this order.
var leadingRules = []rule{
	{topic: TopicRepetition, match: isRepetition},
	{topic: TopicGreeting, match: isGreeting},
	{topic: TopicThanks, match: isThanks},
	{topic: TopicProgramOverview, match: isProgramOverview},
}

// Topic predicates replacing plain keyword matching.
var topicMatchers = map[string]func(t *Table, in *input) bool{
	TopicElectives:      isGeneralElectives,
	TopicElectiveGroupA: electiveGroup(TopicElectiveGroupA),
	TopicElectiveGroupB: electiveGroup(TopicElectiveGroupB),
	TopicElectiveGroupC: electiveGroup(TopicElectiveGroupC),
	TopicElectiveGroupD: electiveGroup(TopicElectiveGroupD),
}

// buildChain returns the ordered rule chain: leading rules, then the table's topics in listed order.
func buildChain(t *Table) []rule {
	chain := make([]rule, 0, len(leadingRules)+len(t.Topics))
	chain = append(chain, leadingRules...)

	for _, topic := range t.Topics {
		match, ok := topicMatchers[topic.Name]
		if !ok {
			match = keywordMatcher(topic.Name)
		}

		chain = append(chain, rule{topic: topic.Name, match: match})
	}

	return chain
}

func keywordMatcher(name string) func(t *Table, in *input) bool {
	return func(t *Table, in *input) bool {
		topic := t.topic(name)
		return topic != nil && MatchesTopic(in.text, topic.Keywords)
	}
}

func isRepetition(t *Table, in *input) bool {
	if len(in.history) <= minRepeatHistory {
		return false
	}

	for i := len(in.history) - 1; i >= 0; i-- {
		if in.history[i].Role == domain.RoleAssistant {
			return MatchesTopic(in.history[i].Content, t.RepetitionPhrases)
		}
	}

	return false
}

func isGreeting(_ *Table, in *input) bool {
	if greetingPattern.MatchString(in.text) {
		return true
	}

	return utf8.RuneCountInString(in.text) < shortMessageLength && !strings.Contains(in.text, "?")
}

func isThanks(_ *Table, in *input) bool {
	return strings.Contains(in.text, "thank")
}

func isProgramOverview(t *Table, in *input) bool {
	if MatchesTopic(in.text, t.topic(TopicProgram).Keywords) &&
		MatchesTopic(in.text, t.topic(TopicObjectives).Keywords) {
		return true
	}

	return MatchesTopic(in.text, t.CompoundPhrases)
}

func isGeneralElectives(t *Table, in *input) bool {
	topic := t.topic(TopicElectives)
	if topic == nil || !MatchesTopic(in.text, topic.Keywords) {
		return false
	}

	return !pie.Any(electiveGroups, func(name string) bool {
		group := t.topic(name)
		return group != nil && (MatchesTopic(in.text, group.Keywords) || MatchesTopic(in.text, group.Mentions))
	})
}

// electiveGroup also fires for "group x" follow-ups once electives are being discussed.
func electiveGroup(name string) func(t *Table, in *input) bool {
	return func(t *Table, in *input) bool {
		group := t.topic(name)
		if group == nil {
			return false
		}

		if MatchesTopic(in.text, group.Keywords) {
			return true
		}

		if !MatchesTopic(in.text, group.Mentions) {
			return false
		}

		return strings.Contains(in.text, "elective") || strings.Contains(in.context, "elective")
	}
}
