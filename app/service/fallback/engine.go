package fallback

import (
	"log/slog"
	"strings"

	"campusbot/app/config"
	"campusbot/app/domain"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

const DefaultContextWindow = 3

// Response is the canned template chosen for a message.
type Response struct {
	Topic string
	Text  string
}

// Engine answers messages from the response table when the upstream model is unavailable.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	table         *Table
	chain         []rule
	contextWindow int
}

func New(di *do.Injector) (*Engine, error) {
	cfg := do.MustInvoke[*config.Config](di)

	table := DefaultTable()
	if cfg.Fallback.ResponsesPath != "" {
		var err error
		if table, err = LoadTable(cfg.Fallback.ResponsesPath); err != nil {
			return nil, err
		}

		slog.Info("Loaded fallback responses",
			"path", cfg.Fallback.ResponsesPath,
			"topics", len(table.Topics))
	}

	return NewEngine(table, cfg.Fallback.ContextWindow), nil
}

func NewEngine(table *Table, contextWindow int) *Engine {
	return &Engine{
		table:         table,
		chain:         buildChain(table),
		contextWindow: contextWindow,
	}
}

// Default returns an engine over the built-in response table.
func Default() *Engine {
	return NewEngine(DefaultTable(), DefaultContextWindow)
}

// Select returns the first template whose rule matches. It never fails:
// when nothing matches, the default template echoes the message back.
func (e *Engine) Select(message string, history []domain.Message) Response {
	raw := strings.TrimSpace(message)
	in := &input{
		raw:     raw,
		text:    strings.ToLower(raw),
		context: ExtractContext(history, e.contextWindow),
		history: history,
	}

	for _, r := range e.chain {
		if r.match(e.table, in) {
			return Response{
				Topic: r.topic,
				Text:  e.template(r.topic),
			}
		}
	}

	return Response{
		Topic: TopicDefault,
		Text:  strings.ReplaceAll(e.table.Default, "{message}", raw),
	}
}

// Reply selects a template and formats it for display.
func (e *Engine) Reply(message string, history []domain.Message) Response {
	resp := e.Select(message, history)
	resp.Text = Format(resp.Text)

	return resp
}

// Topics lists every topic in evaluation order, ending with the default.
func (e *Engine) Topics() []string {
	topics := pie.Map(e.chain, func(r rule) string {
		return r.topic
	})

	return append(topics, TopicDefault)
}

func (e *Engine) template(topic string) string {
	switch topic {
	case TopicRepetition:
		return e.table.Repetition
	case TopicGreeting:
		return e.table.Greeting
	case TopicThanks:
		return e.table.Thanks
	case TopicProgramOverview:
		return e.table.ProgramOverview
	}

	return e.table.topic(topic).Response
}
