package transcribe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAudioFormat(t *testing.T) {
	t.Parallel()
	cases := []struct {
		mime string
		want string
	}{
		{"audio/wav", "wav"},
		{"audio/x-wav", "wav"},
		{"audio/mpeg", "mp3"},
		{"audio/mp3", "mp3"},
		{"audio/ogg", "ogg"},
		{"audio/webm", "ogg"},
		{"audio/mp4", "m4a"},
		{"audio/x-m4a", "m4a"},
		{"application/octet-stream", "wav"},
		{"", "wav"},
	}
	for _, c := range cases {
		if got := audioFormat(c.mime); got != c.want {
			t.Errorf("audioFormat(%q) = %q, want %q", c.mime, got, c.want)
		}
	}
}

func TestOpenRouterTranscribe(t *testing.T) {
	t.Parallel()
	var captured audioChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": "кухня десять квадратов"}}]}`))
	}))
	defer srv.Close()

	tr, err := NewOpenRouter("key", "google/gemini-2.0-flash", WithOpenRouterBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewOpenRouter: %v", err)
	}

	audio := []byte{0x1a, 0x45, 0xdf, 0xa3}
	text, err := tr.Transcribe(context.Background(), audio, "audio/webm")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "кухня десять квадратов" {
		t.Errorf("text = %q", text)
	}

	if captured.Model != "google/gemini-2.0-flash" {
		t.Errorf("model = %q", captured.Model)
	}
	if len(captured.Messages) != 1 || len(captured.Messages[0].Content) != 2 {
		t.Fatalf("request shape: %+v", captured)
	}
	part := captured.Messages[0].Content[1]
	if part.Type != "input_audio" || part.InputAudio == nil {
		t.Fatalf("second part = %+v, want input_audio", part)
	}
	if part.InputAudio.Format != "ogg" {
		t.Errorf("format = %q, want ogg for webm input", part.InputAudio.Format)
	}
	if part.InputAudio.Data != base64.StdEncoding.EncodeToString(audio) {
		t.Error("audio payload is not the base64 of the recording")
	}
}

func TestOpenRouterTranscribeErrors(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr, err := NewOpenRouter("key", "model", WithOpenRouterBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewOpenRouter: %v", err)
	}

	if _, err := tr.Transcribe(context.Background(), []byte{1}, "audio/webm"); err == nil {
		t.Error("non-2xx response: expected error")
	}
	if _, err := tr.Transcribe(context.Background(), nil, "audio/webm"); err == nil {
		t.Error("empty audio: expected error")
	}
}

func TestNewOpenRouterValidation(t *testing.T) {
	t.Parallel()
	if _, err := NewOpenRouter("", "model"); err == nil {
		t.Error("empty api key: expected error")
	}
	if _, err := NewOpenRouter("key", ""); err == nil {
		t.Error("empty model: expected error")
	}
}
