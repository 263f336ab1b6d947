// Package gateway calls the OpenAI-compatible model gateway that produces
// chat replies.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"chatdesk/api/apperrors"
	"chatdesk/api/metrics"
	"chatdesk/api/models"
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client sends one non-streaming completion per call. It never retries.
type Client struct {
	client *openai.Client
	model  string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.New(apperrors.KindConfiguration, "AI service not configured")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

// Complete sends the system instruction followed by the caller's history and
// returns the first choice's content.
func (c *Client) Complete(ctx context.Context, systemPrompt string, history []models.ChatMessage) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	status := statusOf(err)
	metrics.GatewayDuration.WithLabelValues(c.model, strconv.Itoa(status)).Observe(time.Since(start).Seconds())

	if err != nil {
		log.Error().Err(err).Int("status", status).Str("model", c.model).Msg("AI gateway error")
		return "", classify(err, status)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.New(apperrors.KindUpstream, "AI service returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// statusOf extracts the gateway HTTP status from a go-openai error. A nil
// error is reported as 200; transport failures as 0.
func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func classify(err error, status int) error {
	switch status {
	case http.StatusTooManyRequests:
		return apperrors.Wrap(apperrors.KindRateLimited, err, "Rate limit exceeded. Please try again shortly.")
	case http.StatusPaymentRequired:
		return apperrors.Wrap(apperrors.KindQuotaExceeded, err, "AI service quota exceeded. Please contact support.")
	case 0:
		return apperrors.Wrap(apperrors.KindUpstream, err, "AI service unavailable")
	default:
		return apperrors.Wrap(apperrors.KindUpstream, err, fmt.Sprintf("AI service error: %d", status))
	}
}
