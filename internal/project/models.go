// Package project persists projects, their asset libraries, markers and
// timeline snapshots, and runs export jobs against them.
package project

import "time"

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	JobTypeExportEDL     = "export_edl"
	JobTypeExportXML     = "export_xml"
	JobTypeExportPayload = "export_payload"
	JobTypeRender        = "render"

	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job is an asynchronous export or render request. Clients poll it; a
// failed network call surfaces here as status "failed", never as a
// half-mutated timeline.
type Job struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	ProjectID  string    `json:"project_id,omitempty"`
	Progress   int       `json:"progress"`
	OutputPath string    `json:"output_path,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
