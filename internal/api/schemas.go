package api

import (
	"time"

	"github.com/cutroom/cutroom-engine/internal/project"
	"github.com/cutroom/cutroom-engine/internal/timeline"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	State         string       `json:"state"`
	LastError     string       `json:"last_error,omitempty"`
	ProjectsCount int          `json:"projects_count"`
	SessionsOpen  int          `json:"sessions_open"`
	JobsRunning   int          `json:"jobs_running"`
	ActiveJob     *JobResponse `json:"active_job,omitempty"`
}

type CreateProjectRequest struct {
	Name string `json:"name"`
}

type RegisterAssetRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type SetDurationRequest struct {
	Duration float64 `json:"duration"`
}

type OpenSessionRequest struct {
	ProjectID string `json:"project_id"`
}

type SessionResponse struct {
	SessionID string                  `json:"session_id"`
	ProjectID string                  `json:"project_id"`
	Timeline  *timeline.TimelineState `json:"timeline"`
	Selected  []string                `json:"selected,omitempty"`
	Playhead  float64                 `json:"playhead"`
	Magnetic  bool                    `json:"magnetic"`
	CanUndo   bool                    `json:"can_undo"`
	CanRedo   bool                    `json:"can_redo"`
}

type AddClipRequest struct {
	AssetID string `json:"asset_id"`
}

type MoveClipRequest struct {
	ClipID        string  `json:"clip_id"`
	TargetTrackID string  `json:"target_track_id"`
	NewStart      float64 `json:"new_start"`
}

type MoveClipsRequest struct {
	ClipIDs []string `json:"clip_ids,omitempty"`
	Delta   float64  `json:"delta"`
}

type NudgeRequest struct {
	ClipIDs   []string `json:"clip_ids,omitempty"`
	Direction string   `json:"direction"` // "left" | "right"
	Amount    float64  `json:"amount"`
}

type NudgeEdgeRequest struct {
	ClipID    string  `json:"clip_id"`
	Edge      string  `json:"edge"`      // "start" | "end"
	Direction string  `json:"direction"` // "left" | "right"
	Amount    float64 `json:"amount"`
}

type SplitClipRequest struct {
	ClipID   string  `json:"clip_id"`
	Position float64 `json:"position"`
}

type ClipIDsRequest struct {
	ClipIDs []string `json:"clip_ids,omitempty"`
}

type UpdateClipRequest struct {
	ClipID    string   `json:"clip_id"`
	Name      *string  `json:"name,omitempty"`
	Start     *float64 `json:"start,omitempty"`
	TrimStart *float64 `json:"trim_start,omitempty"`
	TrimEnd   *float64 `json:"trim_end,omitempty"`
	Opacity   *float64 `json:"opacity,omitempty"`
	Volume    *float64 `json:"volume,omitempty"`
}

type SelectRequest struct {
	ClipIDs []string `json:"clip_ids,omitempty"`
	From    *float64 `json:"from,omitempty"`
	To      *float64 `json:"to,omitempty"`
	All     bool     `json:"all,omitempty"`
}

type MagneticRequest struct {
	Magnetic bool `json:"magnetic"`
}

type SeekRequest struct {
	Position float64 `json:"position"`
}

type WordRangeRequest struct {
	AssetID string `json:"asset_id"`
	StartMs int    `json:"start_ms"`
	EndMs   int    `json:"end_ms"`
}

type TranscriptUploadRequest struct {
	Source string        `json:"source"`
	Words  []WordPayload `json:"words"`
}

type WordPayload struct {
	Word  string `json:"word"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type AutocutRequest struct {
	AssetID string `json:"asset_id"`
}

type AutocutResponse struct {
	Session SessionResponse `json:"session"`
	Stats   interface{}     `json:"stats"`
}

type MarkerRequest struct {
	Time  float64 `json:"time"`
	Label string  `json:"label,omitempty"`
	Color string  `json:"color,omitempty"`
}

type ExportRequest struct {
	Type string `json:"type"`
}

type JobResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	ProjectID  string `json:"project_id,omitempty"`
	Progress   int    `json:"progress"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func JobToResponse(j *project.Job) JobResponse {
	return JobResponse{
		ID:         j.ID,
		Type:       j.Type,
		Status:     j.Status,
		ProjectID:  j.ProjectID,
		Progress:   j.Progress,
		OutputPath: j.OutputPath,
		Error:      j.Error,
		CreatedAt:  j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  j.UpdatedAt.Format(time.RFC3339),
	}
}
