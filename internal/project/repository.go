package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cutroom/cutroom-engine/internal/timeline"
)

type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	DeleteProject(ctx context.Context, id string) error

	UpsertAsset(ctx context.Context, projectID string, a *timeline.Asset) error
	GetAsset(ctx context.Context, id string) (*timeline.Asset, error)
	ListAssets(ctx context.Context, projectID string) ([]*timeline.Asset, error)
	UpdateAssetDuration(ctx context.Context, id string, duration float64) error
	SetAssetTranscription(ctx context.Context, id string, t *timeline.Transcription) error

	CreateMarker(ctx context.Context, projectID string, m *timeline.Marker) error
	ListMarkers(ctx context.Context, projectID string) ([]*timeline.Marker, error)
	DeleteMarker(ctx context.Context, id string) error

	SaveTimeline(ctx context.Context, projectID string, st *timeline.TimelineState) error
	LoadTimeline(ctx context.Context, projectID string) (*timeline.TimelineState, error)

	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)
	ListPendingJobs(ctx context.Context) ([]*Job, error)
	UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error
	UpdateJobProgress(ctx context.Context, id string, progress int) error
	UpdateJobOutput(ctx context.Context, id, outputPath string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, p *Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)
	`, p.ID, p.Name, p.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM projects WHERE id = ?`, id)

	var p Project
	var createdAt string
	err := row.Scan(&p.ID, &p.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		var p Project
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepository) UpsertAsset(ctx context.Context, projectID string, a *timeline.Asset) error {
	transcription, err := marshalTranscription(a.Transcription)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO assets (id, project_id, type, name, src, remote_src, duration, transcription, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			name = excluded.name,
			src = excluded.src,
			remote_src = excluded.remote_src,
			duration = excluded.duration,
			transcription = excluded.transcription
	`, a.ID, projectID, a.Type, a.Name, nullString(a.Src), nullString(a.RemoteSrc),
		a.Duration, transcription, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetAsset(ctx context.Context, id string) (*timeline.Asset, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, name, src, remote_src, duration, transcription FROM assets WHERE id = ?
	`, id)
	return scanAsset(row.Scan)
}

func (r *SQLiteRepository) ListAssets(ctx context.Context, projectID string) ([]*timeline.Asset, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, name, src, remote_src, duration, transcription
		FROM assets WHERE project_id = ? ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*timeline.Asset
	for rows.Next() {
		a, err := scanAsset(rows.Scan)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func scanAsset(scan func(...any) error) (*timeline.Asset, error) {
	var a timeline.Asset
	var src, remoteSrc, transcription sql.NullString
	err := scan(&a.ID, &a.Type, &a.Name, &src, &remoteSrc, &a.Duration, &transcription)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Src = src.String
	a.RemoteSrc = remoteSrc.String
	if transcription.Valid && transcription.String != "" {
		var t timeline.Transcription
		if err := json.Unmarshal([]byte(transcription.String), &t); err != nil {
			return nil, fmt.Errorf("corrupt transcription for asset %s: %w", a.ID, err)
		}
		a.Transcription = &t
	}
	return &a, nil
}

func (r *SQLiteRepository) UpdateAssetDuration(ctx context.Context, id string, duration float64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE assets SET duration = ? WHERE id = ?`, duration, id)
	return err
}

func (r *SQLiteRepository) SetAssetTranscription(ctx context.Context, id string, t *timeline.Transcription) error {
	transcription, err := marshalTranscription(t)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE assets SET transcription = ? WHERE id = ?`, transcription, id)
	return err
}

func (r *SQLiteRepository) CreateMarker(ctx context.Context, projectID string, m *timeline.Marker) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO markers (id, project_id, time, label, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, projectID, m.Time, nullString(m.Label), m.Color, m.CreatedAt)
	return err
}

func (r *SQLiteRepository) ListMarkers(ctx context.Context, projectID string) ([]*timeline.Marker, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, time, label, color, created_at FROM markers
		WHERE project_id = ? ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var markers []*timeline.Marker
	for rows.Next() {
		var m timeline.Marker
		var label sql.NullString
		if err := rows.Scan(&m.ID, &m.Time, &label, &m.Color, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Label = label.String
		markers = append(markers, &m)
	}
	return markers, rows.Err()
}

func (r *SQLiteRepository) DeleteMarker(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM markers WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepository) SaveTimeline(ctx context.Context, projectID string, st *timeline.TimelineState) error {
	state, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal timeline: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO timelines (project_id, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
	`, projectID, string(state), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) LoadTimeline(ctx context.Context, projectID string) (*timeline.TimelineState, error) {
	row := r.db.QueryRowContext(ctx, `SELECT state FROM timelines WHERE project_id = ?`, projectID)

	var state string
	err := row.Scan(&state)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var st timeline.TimelineState
	if err := json.Unmarshal([]byte(state), &st); err != nil {
		return nil, fmt.Errorf("corrupt timeline for project %s: %w", projectID, err)
	}
	return &st, nil
}

func (r *SQLiteRepository) CreateJob(ctx context.Context, job *Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, type, status, project_id, progress, output_path, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.Type, job.Status, nullString(job.ProjectID), job.Progress,
		nullString(job.OutputPath), nullString(job.Error),
		job.CreatedAt.Format(time.RFC3339), job.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, status, project_id, progress, output_path, error, created_at, updated_at
		FROM jobs WHERE id = ?
	`, id)
	return scanJob(row.Scan)
}

func (r *SQLiteRepository) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, status, project_id, progress, output_path, error, created_at, updated_at
		FROM jobs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *SQLiteRepository) ListPendingJobs(ctx context.Context) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, status, project_id, progress, output_path, error, created_at, updated_at
		FROM jobs WHERE status = ? ORDER BY created_at
	`, JobStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func collectJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func scanJob(scan func(...any) error) (*Job, error) {
	var j Job
	var projectID, outputPath, errMsg sql.NullString
	var createdAt, updatedAt string
	err := scan(&j.ID, &j.Type, &j.Status, &projectID, &j.Progress, &outputPath, &errMsg, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	j.ProjectID = projectID.String
	j.OutputPath = outputPath.String
	j.Error = errMsg.String
	j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &j, nil
}

func (r *SQLiteRepository) UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, nullString(errorMsg), time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) UpdateJobProgress(ctx context.Context, id string, progress int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?
	`, progress, time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) UpdateJobOutput(ctx context.Context, id, outputPath string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET output_path = ?, updated_at = ? WHERE id = ?
	`, outputPath, time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key)
	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func marshalTranscription(t *timeline.Transcription) (any, error) {
	if t == nil {
		return nil, nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal transcription: %w", err)
	}
	return string(b), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
