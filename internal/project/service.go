package project

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cutroom/cutroom-engine/internal/timeline"
)

// Service wraps the repository with the operations handlers call. It owns
// id generation and timestamps so the HTTP layer stays thin.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateProject(ctx context.Context, name string) (*Project, error) {
	if name == "" {
		name = "Untitled Project"
	}
	p := &Project{
		ID:        timeline.NewID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	if err := s.repo.SaveTimeline(ctx, p.ID, timeline.NewState()); err != nil {
		return nil, fmt.Errorf("seed timeline: %w", err)
	}
	s.logger.Info("project created", "project_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *Service) GetProject(ctx context.Context, id string) (*Project, error) {
	return s.repo.GetProject(ctx, id)
}

func (s *Service) ListProjects(ctx context.Context) ([]*Project, error) {
	return s.repo.ListProjects(ctx)
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

// RegisterAsset records an imported media file. Duration may be zero at
// registration and filled in later once the media has been probed.
func (s *Service) RegisterAsset(ctx context.Context, projectID string, a *timeline.Asset) (*timeline.Asset, error) {
	if a.ID == "" {
		a.ID = timeline.NewID()
	}
	if err := s.repo.UpsertAsset(ctx, projectID, a); err != nil {
		return nil, fmt.Errorf("register asset: %w", err)
	}
	s.logger.Info("asset registered", "project_id", projectID, "asset_id", a.ID, "name", a.Name)
	return a, nil
}

func (s *Service) GetAsset(ctx context.Context, id string) (*timeline.Asset, error) {
	return s.repo.GetAsset(ctx, id)
}

func (s *Service) ListAssets(ctx context.Context, projectID string) ([]*timeline.Asset, error) {
	return s.repo.ListAssets(ctx, projectID)
}

func (s *Service) SetAssetDuration(ctx context.Context, id string, duration float64) error {
	if duration < 0 {
		return fmt.Errorf("negative duration %f", duration)
	}
	return s.repo.UpdateAssetDuration(ctx, id, duration)
}

// SaveTranscription attaches word timings to an asset. An upload replaces
// any AI transcription already present.
func (s *Service) SaveTranscription(ctx context.Context, assetID string, t *timeline.Transcription) error {
	if t == nil || len(t.Words) == 0 {
		return fmt.Errorf("empty transcription")
	}
	if err := s.repo.SetAssetTranscription(ctx, assetID, t); err != nil {
		return fmt.Errorf("save transcription: %w", err)
	}
	s.logger.Info("transcription saved", "asset_id", assetID, "source", t.Source, "words", len(t.Words))
	return nil
}

func (s *Service) AddMarker(ctx context.Context, projectID string, at float64, label, color string) (*timeline.Marker, error) {
	if at < 0 {
		at = 0
	}
	switch color {
	case timeline.MarkerBlue, timeline.MarkerRed, timeline.MarkerGreen, timeline.MarkerYellow:
	case "":
		color = timeline.MarkerBlue
	default:
		return nil, fmt.Errorf("unknown marker color %q", color)
	}
	m := &timeline.Marker{
		ID:        timeline.NewID(),
		Time:      at,
		Label:     label,
		Color:     color,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.repo.CreateMarker(ctx, projectID, m); err != nil {
		return nil, fmt.Errorf("add marker: %w", err)
	}
	return m, nil
}

func (s *Service) ListMarkers(ctx context.Context, projectID string) ([]*timeline.Marker, error) {
	return s.repo.ListMarkers(ctx, projectID)
}

func (s *Service) DeleteMarker(ctx context.Context, id string) error {
	return s.repo.DeleteMarker(ctx, id)
}

func (s *Service) SaveTimeline(ctx context.Context, projectID string, st *timeline.TimelineState) error {
	return s.repo.SaveTimeline(ctx, projectID, st)
}

func (s *Service) LoadTimeline(ctx context.Context, projectID string) (*timeline.TimelineState, error) {
	return s.repo.LoadTimeline(ctx, projectID)
}

// CreateExportJob enqueues an export. The runner picks it up on its next
// poll; callers get the job id back immediately.
func (s *Service) CreateExportJob(ctx context.Context, projectID, jobType string) (*Job, error) {
	switch jobType {
	case JobTypeExportEDL, JobTypeExportXML, JobTypeExportPayload, JobTypeRender:
	default:
		return nil, fmt.Errorf("unknown job type %q", jobType)
	}
	now := time.Now().UTC()
	job := &Job{
		ID:        timeline.NewID(),
		Type:      jobType,
		Status:    JobStatusPending,
		ProjectID: projectID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.logger.Info("export job queued", "job_id", job.ID, "type", jobType, "project_id", projectID)
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.GetJob(ctx, id)
}

func (s *Service) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListJobs(ctx, limit)
}
