// Package llm answers unrecognised chat text through an OpenAI-compatible
// chat completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/catalog"
	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultURL     = "https://api.deepseek.com/v1/chat/completions"
	DefaultModel   = "deepseek-chat"
	DefaultTimeout = 15 * time.Second

	maxReplyTokens = 300
	maxErrorBody   = 512
)

// Config selects the endpoint and credentials.
type Config struct {
	APIKey  string
	URL     string
	Model   string
	Timeout time.Duration
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Responder implements ports.Responder.
type Responder struct {
	client       *http.Client
	cfg          Config
	systemPrompt string
}

// NewResponder builds a responder whose system prompt describes the catalog.
func NewResponder(cfg Config, c *catalog.Catalog, storeName string) (*Responder, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm api key is required")
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Responder{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
		cfg:          cfg,
		systemPrompt: SystemPrompt(c, storeName),
	}, nil
}

// SystemPrompt grounds the model in the store's products and prices.
func SystemPrompt(c *catalog.Catalog, storeName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the friendly sales assistant of %s, a store selling discounted subscriptions.\n", storeName)
	b.WriteString("Answer in at most three short sentences. Only mention these products:\n")
	for _, p := range c.List() {
		fmt.Fprintf(&b, "- %s (/%s): %s, %s on Sundays. %s\n",
			p.Name, p.Key, p.NormalPrice.Label, p.DiscountPrice.Label, p.Description)
	}
	b.WriteString("Prices drop every Sunday (India time). To buy, users tap a Buy button or send /buy_<product>.\n")
	b.WriteString("Never invent products, prices or payment details.")
	return b.String()
}

// Respond asks the model for a reply. Every failure wraps domain.ErrUpstreamUnavailable.
func (r *Responder) Respond(ctx context.Context, userID, text string) (string, error) {
	payload := completionRequest{
		Model: r.cfg.Model,
		Messages: []message{
			{Role: "system", Content: r.systemPrompt},
			{Role: "user", Content: text},
		},
		MaxTokens: maxReplyTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: completion request: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: completion status %d: %s", domain.ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode completion: %v", domain.ErrUpstreamUnavailable, err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", domain.ErrUpstreamUnavailable)
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
