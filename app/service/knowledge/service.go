package knowledge

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"campusbot/app/config"

	_ "embed"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

//go:embed knowledge.jsonl
var builtinKnowledge []byte

// Service holds the program knowledge base. It is loaded once and never mutated.
type Service struct {
	sections []*Section
	text     string
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	if cfg.Knowledge.Path == "" {
		return Load(bytes.NewReader(builtinKnowledge))
	}

	file, err := os.Open(cfg.Knowledge.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge file: %w", err)
	}
	defer file.Close()

	svc, err := Load(file)
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded knowledge base",
		"path", cfg.Knowledge.Path,
		"sections", len(svc.sections))

	return svc, nil
}

// Default returns the knowledge base compiled into the binary.
func Default() *Service {
	svc, err := Load(bytes.NewReader(builtinKnowledge))
	if err != nil {
		panic(fmt.Sprintf("builtin knowledge base is invalid: %v", err))
	}

	return svc
}

// Load parses a JSON lines knowledge base, one section per line.
func Load(r io.Reader) (*Service, error) {
	var sections []*Section

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item jsonLineItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("failed to parse JSON line: %w", err)
		}

		if item.Name == "" {
			return nil, fmt.Errorf("section without a name: %q", line)
		}

		sections = append(sections, &Section{
			Name:  item.Name,
			Facts: item.Facts,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading knowledge base: %w", err)
	}

	return &Service{
		sections: sections,
		text:     format(sections),
	}, nil
}

// Format returns the knowledge base rendered as Markdown.
func (s *Service) Format() string {
	return s.text
}

func (s *Service) Sections() []Section {
	return pie.Map(s.sections, func(sec *Section) Section {
		return Section{
			Name:  sec.Name,
			Facts: append([]string(nil), sec.Facts...),
		}
	})
}

// Search finds sections by case-insensitive name.
func (s *Service) Search(names []string) []Section {
	result := make([]Section, 0)

	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))

		for _, sec := range s.sections {
			if strings.ToLower(sec.Name) == name {
				result = append(result, Section{
					Name:  sec.Name,
					Facts: append([]string(nil), sec.Facts...),
				})
			}
		}
	}

	return result
}

func format(sections []*Section) string {
	var builder strings.Builder

	for i, sec := range sections {
		if i > 0 {
			builder.WriteString("\n")
		}

		builder.WriteString(fmt.Sprintf("## %s\n", sec.Name))
		for _, fact := range sec.Facts {
			builder.WriteString(fmt.Sprintf("- %s\n", fact))
		}
	}

	return builder.String()
}
