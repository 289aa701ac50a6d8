// Package openrouter provides an llm.Provider backed by any OpenAI-compatible
// chat-completions endpoint, OpenRouter being the primary target.
//
// Unlike SDK-backed providers this implementation speaks the wire format
// directly, which keeps the attribution headers OpenRouter requires
// (HTTP-Referer, X-Title) under our control and works against any gateway that
// mimics the /chat/completions contract.
package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kairosUNIVERSAL/vizi-kp/pkg/provider/llm"
)

const (
	// DefaultBaseURL is the public OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	defaultTimeout = 60 * time.Second
)

// Option is a functional option for configuring a [Provider].
type Option func(*Provider)

// WithBaseURL overrides the API root. The provider appends /chat/completions.
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		if url != "" {
			p.baseURL = url
		}
	}
}

// WithTimeout sets the per-request HTTP timeout. Default: 60s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.client.SetTimeout(d)
	}
}

// WithAttribution sets the HTTP-Referer and X-Title headers OpenRouter uses
// for app attribution. Both may be empty.
func WithAttribution(referer, title string) Option {
	return func(p *Provider) {
		p.referer = referer
		p.title = title
	}
}

// Provider implements llm.Provider against an OpenAI-compatible
// chat-completions endpoint. It is safe for concurrent use.
type Provider struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	model   string
	referer string
	title   string
}

// Compile-time interface check.
var _ llm.Provider = (*Provider)(nil)

// New constructs a Provider for the given API key and model.
func New(apiKey, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openrouter: model must not be empty")
	}

	p := &Provider{
		client:  resty.New().SetTimeout(defaultTimeout),
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		model:   model,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// wire types for the chat-completions contract.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	body := chatRequest{
		Model:       p.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.SystemPrompt != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	r := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(p.apiKey).
		SetBody(body)
	if p.referer != "" {
		r.SetHeader("HTTP-Referer", p.referer)
	}
	if p.title != "" {
		r.SetHeader("X-Title", p.title)
	}

	resp, err := r.Post(p.baseURL + "/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("openrouter: post chat completion: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("openrouter: API returned %s: %s", resp.Status(), resp.String())
	}

	var cr chatResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return nil, fmt.Errorf("openrouter: decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("openrouter: empty choices in response")
	}

	return &llm.CompletionResponse{
		Content: cr.Choices[0].Message.Content,
		Usage: llm.Usage{
			PromptTokens:     cr.Usage.PromptTokens,
			CompletionTokens: cr.Usage.CompletionTokens,
			TotalTokens:      cr.Usage.TotalTokens,
		},
	}, nil
}
