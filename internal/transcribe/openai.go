package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

// openAIConfig holds optional configuration for the OpenAI transcriber.
type openAIConfig struct {
	baseURL string
	model   string
	timeout time.Duration
}

// OpenAIOption is a functional option for [OpenAI].
type OpenAIOption func(*openAIConfig)

// WithOpenAIBaseURL overrides the default OpenAI API base URL, which lets the
// transcriber talk to any Whisper-compatible endpoint.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = url }
}

// WithOpenAIModel overrides the transcription model. Default: whisper-1.
func WithOpenAIModel(model string) OpenAIOption {
	return func(c *openAIConfig) { c.model = model }
}

// WithOpenAITimeout sets a per-request HTTP timeout.
func WithOpenAITimeout(d time.Duration) OpenAIOption {
	return func(c *openAIConfig) { c.timeout = d }
}

// OpenAI transcribes audio through an OpenAI-compatible audio transcription
// endpoint. Safe for concurrent use.
type OpenAI struct {
	client oai.Client
	model  string
}

// Compile-time interface check.
var _ Transcriber = (*OpenAI)(nil)

// NewOpenAI constructs a transcriber for the given API key.
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("transcribe: apiKey must not be empty")
	}

	cfg := &openAIConfig{model: string(oai.AudioModelWhisper1)}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	return &OpenAI{client: oai.NewClient(reqOpts...), model: cfg.model}, nil
}

// Transcribe implements Transcriber.
func (t *OpenAI) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("transcribe: empty audio")
	}

	filename := "recording." + audioFormat(mimeType)
	resp, err := t.client.Audio.Transcriptions.New(ctx, oai.AudioTranscriptionNewParams{
		File:     oai.File(bytes.NewReader(audio), filename, mimeType),
		Model:    oai.AudioModel(t.model),
		Language: param.NewOpt("ru"),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: transcription: %w", err)
	}
	return resp.Text, nil
}
