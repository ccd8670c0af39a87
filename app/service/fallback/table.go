package fallback

import (
	"fmt"
	"os"
	"strings"

	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed responses.yaml
var builtinResponses []byte

// TopicRule pairs a topic with its keywords and canned response.
type TopicRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	// Mentions are short phrases naming the topic inside a follow-up ("what about group a").
	Mentions []string `yaml:"mentions"`
	Response string   `yaml:"response"`
}

// Table is the declarative response table. Topics are listed in priority order.
type Table struct {
	RepetitionPhrases []string    `yaml:"repetition_phrases"`
	CompoundPhrases   []string    `yaml:"compound_phrases"`
	Greeting          string      `yaml:"greeting"`
	Thanks            string      `yaml:"thanks"`
	Repetition        string      `yaml:"repetition"`
	ProgramOverview   string      `yaml:"program_overview"`
	Default           string      `yaml:"default"`
	Topics            []TopicRule `yaml:"topics"`

	byName map[string]*TopicRule
}

// ParseTable decodes and validates a response table.
func ParseTable(data []byte) (*Table, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse response table: %w", err)
	}

	if err := table.init(); err != nil {
		return nil, err
	}

	return &table, nil
}

// LoadTable reads a response table from disk.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read response table: %w", err)
	}

	return ParseTable(data)
}

// DefaultTable returns the response table compiled into the binary.
func DefaultTable() *Table {
	table, err := ParseTable(builtinResponses)
	if err != nil {
		panic(fmt.Sprintf("builtin response table is invalid: %v", err))
	}

	return table
}

func (t *Table) init() error {
	specials := []struct {
		name string
		text string
	}{
		{TopicGreeting, t.Greeting},
		{TopicThanks, t.Thanks},
		{TopicRepetition, t.Repetition},
		{TopicProgramOverview, t.ProgramOverview},
		{TopicDefault, t.Default},
	}
	for _, s := range specials {
		if strings.TrimSpace(s.text) == "" {
			return fmt.Errorf("response table: %q template is empty", s.name)
		}
	}

	if len(t.RepetitionPhrases) == 0 {
		return fmt.Errorf("response table: no repetition phrases")
	}

	t.RepetitionPhrases = lowerAll(t.RepetitionPhrases)
	t.CompoundPhrases = lowerAll(t.CompoundPhrases)

	t.byName = make(map[string]*TopicRule, len(t.Topics))
	for i := range t.Topics {
		topic := &t.Topics[i]

		if topic.Name == "" {
			return fmt.Errorf("response table: topic #%d has no name", i+1)
		}
		if _, ok := t.byName[topic.Name]; ok {
			return fmt.Errorf("response table: duplicate topic %q", topic.Name)
		}
		if isSpecial(topic.Name) {
			return fmt.Errorf("response table: topic %q shadows a built-in template", topic.Name)
		}

		topic.Keywords = lowerAll(topic.Keywords)
		topic.Mentions = lowerAll(topic.Mentions)

		if len(topic.Keywords) == 0 {
			return fmt.Errorf("response table: topic %q has no keywords", topic.Name)
		}
		if strings.TrimSpace(topic.Response) == "" {
			return fmt.Errorf("response table: topic %q has no response", topic.Name)
		}

		t.byName[topic.Name] = topic
	}

	for _, name := range requiredTopics {
		if _, ok := t.byName[name]; !ok {
			return fmt.Errorf("response table: required topic %q is missing", name)
		}
	}

	return nil
}

func (t *Table) topic(name string) *TopicRule {
	return t.byName[name]
}

func lowerAll(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			result = append(result, v)
		}
	}

	return result
}
