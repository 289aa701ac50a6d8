package transcribe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultOpenRouterBaseURL is the public OpenRouter API root.
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// Audio uploads are slow; transcription gets a longer budget than chat.
	defaultTranscribeTimeout = 120 * time.Second

	instruction = "Расшифруй аудиозапись замера на русском языке. Верни только текст записи, без комментариев."
)

// OpenRouterOption is a functional option for configuring an [OpenRouter].
type OpenRouterOption func(*OpenRouter)

// WithOpenRouterBaseURL overrides the API root.
func WithOpenRouterBaseURL(url string) OpenRouterOption {
	return func(t *OpenRouter) {
		if url != "" {
			t.baseURL = url
		}
	}
}

// WithOpenRouterTimeout sets the per-request HTTP timeout. Default: 120s.
func WithOpenRouterTimeout(d time.Duration) OpenRouterOption {
	return func(t *OpenRouter) {
		t.client.SetTimeout(d)
	}
}

// OpenRouter transcribes audio through an OpenRouter multimodal chat model:
// the recording travels base64-encoded inside an input_audio content part and
// the model answers with the transcript. Safe for concurrent use.
type OpenRouter struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	model   string
}

// Compile-time interface check.
var _ Transcriber = (*OpenRouter)(nil)

// NewOpenRouter constructs a transcriber for the given API key and
// audio-capable model.
func NewOpenRouter(apiKey, model string, opts ...OpenRouterOption) (*OpenRouter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("transcribe: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("transcribe: model must not be empty")
	}

	t := &OpenRouter{
		client:  resty.New().SetTimeout(defaultTranscribeTimeout),
		baseURL: DefaultOpenRouterBaseURL,
		apiKey:  apiKey,
		model:   model,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

type audioPart struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

type contentPart struct {
	Type       string     `json:"type"`
	Text       string     `json:"text,omitempty"`
	InputAudio *audioPart `json:"input_audio,omitempty"`
}

type audioMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type audioChatRequest struct {
	Model    string         `json:"model"`
	Messages []audioMessage `json:"messages"`
}

type audioChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Transcribe implements Transcriber.
func (t *OpenRouter) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("transcribe: empty audio")
	}

	body := audioChatRequest{
		Model: t.model,
		Messages: []audioMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: instruction},
				{Type: "input_audio", InputAudio: &audioPart{
					Data:   base64.StdEncoding.EncodeToString(audio),
					Format: audioFormat(mimeType),
				}},
			},
		}},
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(t.apiKey).
		SetBody(body).
		Post(t.baseURL + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("transcribe: post: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("transcribe: API returned %s: %s", resp.Status(), resp.String())
	}

	var cr audioChatResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return "", fmt.Errorf("transcribe: decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("transcribe: empty choices in response")
	}
	return cr.Choices[0].Message.Content, nil
}
