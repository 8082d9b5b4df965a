package remote

import (
	"context"
	"log/slog"

	"github.com/cutroom/cutroom-engine/internal/export"
	"github.com/cutroom/cutroom-engine/internal/timeline"
)

// StubClient stands in when no render backend is configured. Renders
// succeed instantly with an empty output; transcriptions come back empty.
type StubClient struct {
	logger *slog.Logger

	RenderCalls     int
	TranscribeCalls int
}

func NewStubClient(logger *slog.Logger) *StubClient {
	return &StubClient{logger: logger}
}

func (s *StubClient) Render(ctx context.Context, payload *export.Payload) (*RenderResult, error) {
	s.RenderCalls++
	s.logger.Info("stub render", "asset_count", len(payload.Assets))
	return &RenderResult{}, nil
}

func (s *StubClient) Transcribe(ctx context.Context, assetID, mediaURL string) (*timeline.Transcription, error) {
	s.TranscribeCalls++
	s.logger.Info("stub transcribe", "asset_id", assetID)
	return &timeline.Transcription{Source: timeline.TranscriptSourceAI}, nil
}
