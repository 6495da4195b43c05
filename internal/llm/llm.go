// Package llm invokes the external structured-generation service. A
// response either satisfies the exam schema exactly or the call fails;
// malformed output is never repaired here.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pavelanni/examgen/internal/llm/prompts"
	"github.com/pavelanni/examgen/internal/model"
)

// ErrSchemaViolation marks generator output that does not satisfy the
// exam schema: undecodable JSON, a wrong question count, or a per-type
// shape invariant breach. These failures are terminal and never retried.
var ErrSchemaViolation = errors.New("generator output violates exam schema")

const (
	maxTransportRetries = 2
	retryBackoff        = 500 * time.Millisecond
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Ping verifies the LLM endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.ListModels(ctx)
	return err
}

// GenerateExam asks the LLM for an exam with exactly count questions,
// grounded in contextText when it is non-empty. Transport failures get a
// small bounded retry; schema violations fail immediately.
func (c *Client) GenerateExam(ctx context.Context, topic, difficulty string, count int, contextText string) (*model.GeneratedExam, error) {
	schema := examSchema(count)
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompts.System},
			{Role: openai.ChatMessageRoleUser, Content: prompts.Generation(topic, difficulty, count, contextText)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "practice_exam",
				Schema: &schema,
			},
		},
		Temperature: 0.7,
	}

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; ; attempt++ {
		resp, err = c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
		if attempt >= maxTransportRetries || !retryable(err) {
			return nil, fmt.Errorf("LLM API call: %w", err)
		}
		slog.Warn("LLM call failed, retrying", "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt+1)):
		}
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "raw", raw)

	var exam model.GeneratedExam
	if err := json.Unmarshal([]byte(raw), &exam); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", ErrSchemaViolation, err)
	}
	if err := ValidateExam(&exam, count); err != nil {
		return nil, err
	}

	return &exam, nil
}

// retryable reports whether an API error is a transient transport
// failure. Client-side errors and cancellations are not retried; schema
// problems never reach here because the API call itself succeeded.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= http.StatusInternalServerError ||
			apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	// Connection-level failures (no HTTP response at all).
	return true
}
