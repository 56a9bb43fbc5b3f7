package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// HTTPConfig configures the HTTP speech backend client.
type HTTPConfig struct {
	TranscribeURL string
	SynthesizeURL string
	APIKey        string
	Timeout       time.Duration
}

// HTTPClient talks to a speech backend over plain HTTP: multipart WAV
// upload for transcription, JSON POST for synthesis.
type HTTPClient struct {
	cfg    HTTPConfig
	client *http.Client
}

func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.TranscribeURL) == "" {
		return nil, fmt.Errorf("transcribe URL cannot be empty")
	}
	if strings.TrimSpace(cfg.SynthesizeURL) == "" {
		return nil, fmt.Errorf("synthesize URL cannot be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTTPClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

type transcribeResponse struct {
	Text string `json:"text"`
}

func (c *HTTPClient) Transcribe(ctx context.Context, wav []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "utterance.wav")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TranscribeURL, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send transcribe request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", fmt.Errorf("transcribe http status %d: %s", res.StatusCode, string(snippet))
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read transcribe response: %w", err)
	}

	var parsed transcribeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// Some backends answer with the bare transcript.
		return strings.TrimSpace(string(raw)), nil
	}
	return strings.TrimSpace(parsed.Text), nil
}

type synthesizeRequest struct {
	Text         string `json:"text"`
	OutputFormat string `json:"output_format"`
	SampleRate   int    `json:"sample_rate"`
}

func (c *HTTPClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(synthesizeRequest{
		Text:         text,
		OutputFormat: "ulaw_8000",
		SampleRate:   8000,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal synthesize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SynthesizeURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send synthesize request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, fmt.Errorf("synthesize http status %d: %s", res.StatusCode, string(snippet))
	}

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesize response: %w", err)
	}
	return audio, nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	if strings.TrimSpace(c.cfg.APIKey) != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}
