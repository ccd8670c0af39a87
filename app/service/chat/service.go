package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campusbot/app/client/llm"
	"campusbot/app/config"
	"campusbot/app/domain"
	"campusbot/app/service/fallback"
	"campusbot/app/service/knowledge"
	"campusbot/app/service/metrics"

	_ "embed"

	"github.com/samber/do"
	"golang.org/x/time/rate"
)

//go:embed system_prompt.txt
var systemPromptTemplate string

const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"

	reasonQuota    = "quota"
	reasonUpstream = "upstream"
)

var (
	ErrEmptyMessage = errors.New("message is required")
	ErrInvalidRole  = errors.New("invalid message role")

	errUpstreamDisabled = errors.New("upstream model is not configured")
)

// Completer sends a conversation to the upstream chat model.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

type Reply struct {
	Text   string
	Source string
	// Topic is set for fallback replies only.
	Topic string
}

type Service struct {
	cfg        *config.Config
	completer  Completer
	engine     *fallback.Engine
	metricsSvc *metrics.Service
	limiter    *rate.Limiter

	systemPrompt string
}

func New(di *do.Injector) (*Service, error) {
	return NewService(
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[*llm.Client](di),
		do.MustInvoke[*fallback.Engine](di),
		do.MustInvoke[*knowledge.Service](di),
		do.MustInvoke[*metrics.Service](di),
	), nil
}

func NewService(
	cfg *config.Config,
	completer Completer,
	engine *fallback.Engine,
	knowledgeSvc *knowledge.Service,
	metricsSvc *metrics.Service,
) *Service {
	templateValues := map[string]any{
		"knowledge_base": knowledgeSvc.Format(),
	}

	prompt := systemPromptTemplate
	for key, value := range templateValues {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", fmt.Sprint(value))
	}

	return &Service{
		cfg:          cfg,
		completer:    completer,
		engine:       engine,
		metricsSvc:   metricsSvc,
		limiter:      newLimiter(cfg.OpenAI.RequestsPerMinute),
		systemPrompt: prompt,
	}
}

// GetReply answers a message, preferring the upstream model and falling back to
// canned responses on any upstream failure. Only malformed input is returned as an error.
func (s *Service) GetReply(ctx context.Context, message string, history []domain.Message) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	for i, msg := range history {
		if !domain.ValidRole(msg.Role) {
			return nil, fmt.Errorf("%w: %q at position %d", ErrInvalidRole, msg.Role, i)
		}
	}

	text, err := s.askUpstream(ctx, message, history)
	if err == nil {
		s.metricsSvc.ObserveReply(SourceLLM)
		return &Reply{
			Text:   text,
			Source: SourceLLM,
		}, nil
	}

	switch {
	case errors.Is(err, errUpstreamDisabled):
		slog.Debug("Upstream model disabled, using fallback")
	case llm.IsQuotaError(err):
		s.metricsSvc.ObserveUpstreamFailure(reasonQuota)
		slog.Warn("Upstream quota exceeded, using fallback",
			"reason", reasonQuota,
			"error", err)
	default:
		s.metricsSvc.ObserveUpstreamFailure(reasonUpstream)
		slog.Warn("Upstream request failed, using fallback",
			"reason", reasonUpstream,
			"error", err)
	}

	resp := s.engine.Reply(message, history)

	s.metricsSvc.ObserveReply(SourceFallback)
	s.metricsSvc.ObserveFallbackTopic(resp.Topic)

	return &Reply{
		Text:   resp.Text,
		Source: SourceFallback,
		Topic:  resp.Topic,
	}, nil
}

// Topics lists the fallback topics in evaluation order.
func (s *Service) Topics() []string {
	return s.engine.Topics()
}

func (s *Service) askUpstream(ctx context.Context, message string, history []domain.Message) (string, error) {
	if !s.completer.Enabled() {
		return "", errUpstreamDisabled
	}

	if !s.limiter.Allow() {
		return "", llm.ErrRateLimited
	}

	if window := s.cfg.OpenAI.HistoryWindow; len(history) > window {
		history = history[len(history)-window:]
	}

	messages := make([]domain.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, domain.Message{
		Role:    domain.RoleUser,
		Content: message,
	})

	ctx, cancel := context.WithTimeout(ctx, s.cfg.OpenAI.Timeout)
	defer cancel()

	start := time.Now()
	text, err := s.completer.Complete(ctx, llm.CompletionRequest{
		System:   s.systemPrompt,
		Messages: messages,
	})
	s.metricsSvc.ObserveUpstreamLatency(time.Since(start))

	if err != nil {
		return "", fmt.Errorf("completer.Complete: %w", err)
	}

	return text, nil
}

// newLimiter allows perMinute requests with an equal burst; 0 means unlimited.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}

	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}
