package project

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cutroom/cutroom-engine/internal/db"
	"github.com/cutroom/cutroom-engine/internal/timeline"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewRepository(database.Conn())
}

func mustCreateProject(t *testing.T, repo *SQLiteRepository, name string) *Project {
	t.Helper()
	p := &Project{ID: timeline.NewID(), Name: name, CreatedAt: time.Now().UTC()}
	if err := repo.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func TestRepository_ProjectCRUD(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	p := mustCreateProject(t, repo, "Doc Edit")

	got, err := repo.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got == nil || got.Name != "Doc Edit" {
		t.Fatalf("got = %+v", got)
	}

	list, err := repo.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}

	if err := repo.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	got, err = repo.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProject after delete: %v", err)
	}
	if got != nil {
		t.Fatal("project survived delete")
	}
}

func TestRepository_AssetRoundTrip(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	p := mustCreateProject(t, repo, "P")

	asset := &timeline.Asset{
		ID:       "asset-1",
		Type:     timeline.AssetTypeVideo,
		Name:     "interview.mp4",
		Src:      "/media/interview.mp4",
		Duration: 0,
	}
	if err := repo.UpsertAsset(ctx, p.ID, asset); err != nil {
		t.Fatalf("UpsertAsset: %v", err)
	}

	if err := repo.UpdateAssetDuration(ctx, "asset-1", 92.5); err != nil {
		t.Fatalf("UpdateAssetDuration: %v", err)
	}
	tr := &timeline.Transcription{
		Source: timeline.TranscriptSourceAI,
		Words:  []timeline.Word{{Text: "hello", StartMs: 0, EndMs: 400}},
	}
	if err := repo.SetAssetTranscription(ctx, "asset-1", tr); err != nil {
		t.Fatalf("SetAssetTranscription: %v", err)
	}

	got, err := repo.GetAsset(ctx, "asset-1")
	if err != nil {
		t.Fatalf("GetAsset: %v", err)
	}
	if got.Duration != 92.5 {
		t.Errorf("Duration = %f, want 92.5", got.Duration)
	}
	if got.Transcription == nil || len(got.Transcription.Words) != 1 {
		t.Fatalf("Transcription = %+v", got.Transcription)
	}
	if got.Transcription.Words[0].Text != "hello" {
		t.Errorf("word = %+v", got.Transcription.Words[0])
	}

	// Upsert with same id replaces.
	asset.Name = "interview_v2.mp4"
	if err := repo.UpsertAsset(ctx, p.ID, asset); err != nil {
		t.Fatalf("second UpsertAsset: %v", err)
	}
	assets, err := repo.ListAssets(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	if len(assets) != 1 || assets[0].Name != "interview_v2.mp4" {
		t.Fatalf("assets = %+v", assets)
	}
}

func TestRepository_TimelinePersistence(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	p := mustCreateProject(t, repo, "P")

	st := timeline.NewState()
	st.Tracks[0].Clips = []*timeline.TimelineClip{
		{ID: "c1", AssetID: "a1", TrackID: "track-1", Name: "Clip", Start: 0, End: 5, TrimEnd: 5, Opacity: 100, Volume: 100},
	}
	if err := repo.SaveTimeline(ctx, p.ID, st); err != nil {
		t.Fatalf("SaveTimeline: %v", err)
	}

	got, err := repo.LoadTimeline(ctx, p.ID)
	if err != nil {
		t.Fatalf("LoadTimeline: %v", err)
	}
	if len(got.Tracks) != 3 || len(got.Tracks[0].Clips) != 1 {
		t.Fatalf("loaded state = %+v", got)
	}
	if got.Tracks[0].Clips[0].End != 5 {
		t.Errorf("clip End = %f, want 5", got.Tracks[0].Clips[0].End)
	}

	// Save again overwrites.
	st.Tracks[0].Clips = nil
	if err := repo.SaveTimeline(ctx, p.ID, st); err != nil {
		t.Fatalf("second SaveTimeline: %v", err)
	}
	got, _ = repo.LoadTimeline(ctx, p.ID)
	if len(got.Tracks[0].Clips) != 0 {
		t.Fatal("overwrite did not take")
	}
}

func TestRepository_LoadTimeline_Missing(t *testing.T) {
	repo := setupTestRepo(t)
	got, err := repo.LoadTimeline(context.Background(), "nope")
	if err != nil {
		t.Fatalf("LoadTimeline: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for missing timeline")
	}
}

func TestRepository_Markers(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	p := mustCreateProject(t, repo, "P")

	m := &timeline.Marker{ID: "m1", Time: 12.5, Label: "fix audio", Color: timeline.MarkerRed, CreatedAt: time.Now().UnixMilli()}
	if err := repo.CreateMarker(ctx, p.ID, m); err != nil {
		t.Fatalf("CreateMarker: %v", err)
	}

	markers, err := repo.ListMarkers(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListMarkers: %v", err)
	}
	if len(markers) != 1 || markers[0].Label != "fix audio" {
		t.Fatalf("markers = %+v", markers)
	}

	if err := repo.DeleteMarker(ctx, "m1"); err != nil {
		t.Fatalf("DeleteMarker: %v", err)
	}
	markers, _ = repo.ListMarkers(ctx, p.ID)
	if len(markers) != 0 {
		t.Fatal("marker survived delete")
	}
}

func TestRepository_Jobs(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	p := mustCreateProject(t, repo, "P")

	now := time.Now().UTC()
	job := &Job{ID: "job-1", Type: JobTypeExportEDL, Status: JobStatusPending, ProjectID: p.ID, CreatedAt: now, UpdatedAt: now}
	if err := repo.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	pending, err := repo.ListPendingJobs(ctx)
	if err != nil {
		t.Fatalf("ListPendingJobs: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}

	if err := repo.UpdateJobStatus(ctx, "job-1", JobStatusRunning, ""); err != nil {
		t.Fatalf("UpdateJobStatus: %v", err)
	}
	if err := repo.UpdateJobProgress(ctx, "job-1", 50); err != nil {
		t.Fatalf("UpdateJobProgress: %v", err)
	}
	if err := repo.UpdateJobOutput(ctx, "job-1", "/artifacts/out.edl"); err != nil {
		t.Fatalf("UpdateJobOutput: %v", err)
	}

	got, err := repo.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != JobStatusRunning || got.Progress != 50 || got.OutputPath != "/artifacts/out.edl" {
		t.Fatalf("job = %+v", got)
	}

	pending, _ = repo.ListPendingJobs(ctx)
	if len(pending) != 0 {
		t.Fatal("running job still listed as pending")
	}
}

func TestRepository_Config(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	val, err := repo.GetConfig(ctx, "auth_token")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if val != "" {
		t.Fatalf("missing key = %q, want empty", val)
	}

	if err := repo.SetConfig(ctx, "auth_token", "secret"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if err := repo.SetConfig(ctx, "auth_token", "rotated"); err != nil {
		t.Fatalf("SetConfig overwrite: %v", err)
	}

	val, _ = repo.GetConfig(ctx, "auth_token")
	if val != "rotated" {
		t.Fatalf("value = %q, want rotated", val)
	}
}
