package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"campusbot/app/config"
	"campusbot/app/domain"

	"github.com/samber/do"
	"github.com/sashabaranov/go-openai"
)

var (
	ErrEmptyCompletion = errors.New("no chat completion found")
	ErrRateLimited     = errors.New("local rate limit exceeded")
)

type CompletionRequest struct {
	System   string
	Messages []domain.Message
}

type Client struct {
	cfg config.OpenAI
	api *openai.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewFromConfig(cfg.OpenAI), nil
}

func NewFromConfig(cfg config.OpenAI) *Client {
	clientConfig := openai.DefaultConfig(cfg.Token)

	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
	}

	return &Client{
		cfg: cfg,
		api: openai.NewClientWithConfig(clientConfig),
	}
}

// Enabled reports whether an API token is configured.
func (c *Client) Enabled() bool {
	return c.cfg.Token != ""
}

func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	aiResponse, err := c.api.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:               c.cfg.Model,
			Messages:            messages,
			MaxCompletionTokens: c.cfg.MaxTokens,
			Temperature:         temperature(c.cfg.Temperature),
			FrequencyPenalty:    c.cfg.FrequencyPenalty,
			PresencePenalty:     c.cfg.PresencePenalty,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	result := strings.TrimSpace(aiResponse.Choices[0].Message.Content)
	if result == "" {
		return "", ErrEmptyCompletion
	}

	return result, nil
}

// IsQuotaError reports whether err means the upstream quota or rate limit was hit.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}

	text := strings.ToLower(err.Error())

	return strings.Contains(text, "quota") ||
		strings.Contains(text, "rate limit") ||
		strings.Contains(text, "429")
}

// temperature keeps an explicit 0 on the wire; go-openai omits zero temperatures,
// which the API then treats as its default of 1.
func temperature(value float32) float32 {
	if value == 0 {
		return math.SmallestNonzeroFloat32
	}

	return value
}
