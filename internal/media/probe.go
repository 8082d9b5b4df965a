package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
)

// Prober extracts the duration of a media file. Asset durations start at
// zero and are filled in asynchronously by the import handler.
type Prober interface {
	Probe(ctx context.Context, filePath string) (*ProbeResult, error)
}

type ProbeResult struct {
	Duration float64
	Format   string
}

// FFProber shells out to ffprobe.
type FFProber struct {
	binary string
	logger *slog.Logger
}

func NewFFProber(logger *slog.Logger) *FFProber {
	return &FFProber{binary: "ffprobe", logger: logger}
}

func (p *FFProber) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error",
		"-show_entries", "format=duration,format_name",
		"-of", "json",
		filePath,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", filePath, err)
	}

	var doc struct {
		Format struct {
			Duration   string `json:"duration"`
			FormatName string `json:"format_name"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	duration, err := strconv.ParseFloat(doc.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("parse duration %q: %w", doc.Format.Duration, err)
	}

	p.logger.Info("media probed", "path", filePath, "duration", duration)
	return &ProbeResult{Duration: duration, Format: doc.Format.FormatName}, nil
}

// StubProber reports a fixed duration. Used in tests and when ffprobe is
// not installed.
type StubProber struct {
	Duration float64
	logger   *slog.Logger
}

func NewStubProber(duration float64, logger *slog.Logger) *StubProber {
	return &StubProber{Duration: duration, logger: logger}
}

func (p *StubProber) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	p.logger.Info("probe stub: returning fixed duration", "path", filePath, "duration", p.Duration)
	return &ProbeResult{Duration: p.Duration}, nil
}
