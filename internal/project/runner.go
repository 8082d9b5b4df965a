package project

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/cutroom/cutroom-engine/internal/export"
	"github.com/cutroom/cutroom-engine/internal/fcpxml"
	"github.com/cutroom/cutroom-engine/internal/remote"
	"github.com/cutroom/cutroom-engine/internal/timeline"
)

// Runner drains the job queue: export jobs write artifacts to disk,
// render jobs go to the render backend. One job at a time, polled.
type Runner struct {
	service      *Service
	repo         Repository
	render       remote.Client
	artifactsDir string
	frameRate    float64
	logger       *slog.Logger
	pollInterval time.Duration
	running      atomic.Bool
	paused       atomic.Bool
}

func NewRunner(service *Service, repo Repository, render remote.Client, artifactsDir string, frameRate float64, logger *slog.Logger) *Runner {
	return &Runner{
		service:      service,
		repo:         repo,
		render:       render,
		artifactsDir: artifactsDir,
		frameRate:    frameRate,
		logger:       logger,
		pollInterval: 5 * time.Second,
	}
}

func (r *Runner) Start(ctx context.Context) {
	if r.running.Swap(true) {
		return
	}

	r.logger.Info("job runner started")

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("job runner stopping")
			r.running.Store(false)
			return
		case <-ticker.C:
			if !r.paused.Load() {
				r.ProcessNextJob(ctx)
			}
		}
	}
}

func (r *Runner) Pause() {
	r.paused.Store(true)
	r.logger.Info("job runner paused")
}

func (r *Runner) Resume() {
	r.paused.Store(false)
	r.logger.Info("job runner resumed")
}

func (r *Runner) IsPaused() bool {
	return r.paused.Load()
}

func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

// ProcessNextJob runs the oldest pending job to completion. Exposed so
// tests can drive the queue without the poll loop.
func (r *Runner) ProcessNextJob(ctx context.Context) {
	jobs, err := r.repo.ListPendingJobs(ctx)
	if err != nil {
		r.logger.Error("failed to list pending jobs", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	job := jobs[0]
	r.logger.Info("processing job", "job_id", job.ID, "type", job.Type)
	r.repo.UpdateJobStatus(ctx, job.ID, JobStatusRunning, "")

	st, lib, proj, err := r.loadProject(ctx, job.ProjectID)
	if err != nil {
		r.fail(ctx, job, err)
		return
	}

	switch job.Type {
	case JobTypeExportEDL:
		r.runExportEDL(ctx, job, st, lib, proj)
	case JobTypeExportXML:
		r.runExportXML(ctx, job, st, proj)
	case JobTypeExportPayload:
		r.runExportPayload(ctx, job, st, lib, proj)
	case JobTypeRender:
		r.runRender(ctx, job, st, lib)
	default:
		r.repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, "unknown job type")
	}
}

func (r *Runner) loadProject(ctx context.Context, projectID string) (*timeline.TimelineState, *timeline.Library, *Project, error) {
	proj, err := r.repo.GetProject(ctx, projectID)
	if err != nil || proj == nil {
		return nil, nil, nil, fmt.Errorf("project not found")
	}
	st, err := r.repo.LoadTimeline(ctx, projectID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load timeline: %w", err)
	}
	if st == nil {
		return nil, nil, nil, fmt.Errorf("project has no timeline")
	}
	assets, err := r.repo.ListAssets(ctx, projectID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load assets: %w", err)
	}
	return st, timeline.NewLibrary(assets...), proj, nil
}

func (r *Runner) runExportEDL(ctx context.Context, job *Job, st *timeline.TimelineState, lib *timeline.Library, proj *Project) {
	result := export.GenerateEDL(st, lib, proj.Name, r.frameRate)
	if len(result.Unresolved) > 0 {
		r.logger.Warn("EDL export skipped unresolved clips", "job_id", job.ID, "unresolved", result.Unresolved)
	}
	r.writeArtifact(ctx, job, proj, "edl", []byte(result.Document))
}

func (r *Runner) runExportXML(ctx context.Context, job *Job, st *timeline.TimelineState, proj *Project) {
	var buf bytes.Buffer
	if err := fcpxml.Generate(&buf, st, proj.Name, int(r.frameRate)); err != nil {
		r.fail(ctx, job, err)
		return
	}
	r.writeArtifact(ctx, job, proj, "xml", buf.Bytes())
}

func (r *Runner) runExportPayload(ctx context.Context, job *Job, st *timeline.TimelineState, lib *timeline.Library, proj *Project) {
	payload, err := json.MarshalIndent(export.BuildPayload(st, lib), "", "  ")
	if err != nil {
		r.fail(ctx, job, err)
		return
	}
	r.writeArtifact(ctx, job, proj, "json", payload)
}

func (r *Runner) runRender(ctx context.Context, job *Job, st *timeline.TimelineState, lib *timeline.Library) {
	r.repo.UpdateJobProgress(ctx, job.ID, 10)

	result, err := r.render.Render(ctx, export.BuildPayload(st, lib))
	if err != nil {
		r.fail(ctx, job, err)
		return
	}

	r.repo.UpdateJobOutput(ctx, job.ID, result.OutputURL)
	r.repo.UpdateJobProgress(ctx, job.ID, 100)
	r.repo.UpdateJobStatus(ctx, job.ID, JobStatusCompleted, "")
	r.logger.Info("render job completed", "job_id", job.ID, "output", result.OutputURL)
}

func (r *Runner) writeArtifact(ctx context.Context, job *Job, proj *Project, ext string, data []byte) {
	dir := filepath.Join(r.artifactsDir, proj.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		r.fail(ctx, job, err)
		return
	}

	name := export.SanitizeName(proj.Name, 64)
	if name == "" {
		name = proj.ID
	}
	suffix := job.ID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	outPath := filepath.Join(dir, fmt.Sprintf("%s-%s.%s", name, suffix, ext))
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		r.fail(ctx, job, err)
		return
	}

	r.repo.UpdateJobOutput(ctx, job.ID, outPath)
	r.repo.UpdateJobProgress(ctx, job.ID, 100)
	r.repo.UpdateJobStatus(ctx, job.ID, JobStatusCompleted, "")
	r.logger.Info("export artifact written", "job_id", job.ID, "path", outPath)
}

func (r *Runner) fail(ctx context.Context, job *Job, err error) {
	r.logger.Error("job failed", "job_id", job.ID, "type", job.Type, "error", err)
	r.repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, err.Error())
}
