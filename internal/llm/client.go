// Package llm wraps the OpenAI-compatible text-generation backend used for
// keyword extraction, per-kind analysis, and final answer composition. The
// wrapper exposes exactly the surface the pipeline needs: one bounded,
// non-streaming completion call per stage, with no retries.
package llm

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/web3insight/go-insight-backend/internal/config"
)

// ErrGeneration is returned when a model call fails or times out. Callers
// surface it as an explicit error state rather than a blank answer.
var ErrGeneration = errors.New("analysis unavailable")

// Generator is the text-generation contract consumed by the classifier and
// the orchestrator. Implementations must honor ctx cancellation and bound
// output by maxTokens.
type Generator interface {
	Generate(ctx context.Context, system, user string, maxTokens int, topP float32) (string, error)
}

// Client is the production Generator over go-openai.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// NewClient configures a go-openai client for the given backend. A custom
// BaseURL supports OpenAI-compatible gateways; the HTTP client forces
// HTTP/1.1 because some of those gateways mishandle HTTP/2 streams.
func NewClient(cfg config.LLMConfig) *Client {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	cc.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
		},
	}

	return &Client{
		api:     openai.NewClientWithConfig(cc),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Generate performs one chat completion with a system and a user message.
func (c *Client) Generate(ctx context.Context, system, user string, maxTokens int, topP float32) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens: maxTokens,
	}
	if topP > 0 {
		req.TopP = topP
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrGeneration)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
