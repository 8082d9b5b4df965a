// Package remote talks to the rendering and transcription backends. The
// engine never blocks a timeline edit on these calls; the job runner
// drives them.
package remote

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cutroom/cutroom-engine/internal/export"
	"github.com/cutroom/cutroom-engine/internal/timeline"
)

// RequestError is a non-2xx response from a backend.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("backend request failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx). Client errors (4xx)
// are considered permanent.
func (e *RequestError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// RenderResult is the backend's answer to a render request.
type RenderResult struct {
	OutputURL  string `json:"output_url"`
	DurationMs int    `json:"duration_ms"`
}

// Client submits timelines for rendering and media for transcription.
type Client interface {
	Render(ctx context.Context, payload *export.Payload) (*RenderResult, error)
	Transcribe(ctx context.Context, assetID, mediaURL string) (*timeline.Transcription, error)
}

// HTTPClient is the production client.
type HTTPClient struct {
	baseURL    string
	token      string
	deviceID   string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, token string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		logger: logger,
	}
}

func (c *HTTPClient) SetDeviceID(id string) {
	c.deviceID = id
}

func (c *HTTPClient) Render(ctx context.Context, payload *export.Payload) (*RenderResult, error) {
	c.logger.Info("submitting render",
		"url", c.baseURL+"/api/render",
		"clip_count", clipCount(payload.Timeline),
		"asset_count", len(payload.Assets),
	)

	var result RenderResult
	if err := c.post(ctx, "/api/render", payload, &result); err != nil {
		return nil, err
	}
	c.logger.Info("render completed", "output_url", result.OutputURL, "duration_ms", result.DurationMs)
	return &result, nil
}

func (c *HTTPClient) Transcribe(ctx context.Context, assetID, mediaURL string) (*timeline.Transcription, error) {
	req := map[string]string{"asset_id": assetID, "media_url": mediaURL}

	var words []struct {
		Word  string `json:"word"`
		Start int    `json:"start"`
		End   int    `json:"end"`
	}
	if err := c.post(ctx, "/api/transcribe", req, &words); err != nil {
		return nil, err
	}

	t := &timeline.Transcription{Source: timeline.TranscriptSourceAI}
	for _, w := range words {
		t.Words = append(t.Words, timeline.Word{Text: w.Word, StartMs: w.Start, EndMs: w.End})
	}
	c.logger.Info("transcription received", "asset_id", assetID, "words", len(t.Words))
	return t, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Cutroom-Request-Id", generateRequestID())
	if c.deviceID != "" {
		req.Header.Set("X-Cutroom-Device-Id", c.deviceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func clipCount(st *timeline.TimelineState) int {
	n := 0
	for _, t := range st.Tracks {
		n += len(t.Clips)
	}
	return n
}

func generateRequestID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}
