package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cutroom/cutroom-engine/internal/session"
	"github.com/cutroom/cutroom-engine/internal/timeline"
)

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Projects.ListProjects(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, projects)
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		p, err := cfg.Projects.CreateProject(r.Context(), req.Name)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to create project", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusCreated, p)
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := cfg.Projects.GetProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to get project", "INTERNAL_ERROR")
			return
		}
		if p == nil {
			WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, p)
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if s, ok := cfg.Sessions.GetByProject(id); ok {
			cfg.Sessions.Close(s.ID)
		}

		if err := cfg.Projects.DeleteProject(r.Context(), id); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to delete project", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func listAssetsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assets, err := cfg.Projects.ListAssets(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list assets", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, assets)
	}
}

// uploadAssetHandler accepts either a multipart upload (field "file") that
// stores the blob and probes its duration, or a bare JSON registration for
// media that lives elsewhere.
func uploadAssetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		projectID := chi.URLParam(r, "id")

		if p, err := cfg.Projects.GetProject(ctx, projectID); err != nil || p == nil {
			WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
			return
		}

		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			var req RegisterAssetRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
				WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
				return
			}
			asset, err := cfg.Projects.RegisterAsset(ctx, projectID, &timeline.Asset{
				Type: assetType(req.Type),
				Name: req.Name,
			})
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to register asset", "INTERNAL_ERROR")
				return
			}
			WriteJSON(w, http.StatusCreated, asset)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "missing file field", "BAD_REQUEST")
			return
		}
		defer file.Close()

		asset, err := cfg.Projects.RegisterAsset(ctx, projectID, &timeline.Asset{
			Type: assetType(r.FormValue("type")),
			Name: header.Filename,
		})
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to register asset", "INTERNAL_ERROR")
			return
		}

		path, err := cfg.Media.Save(asset.ID, header.Filename, file)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to store media", "INTERNAL_ERROR")
			return
		}
		asset.Src = path

		if cfg.Prober != nil {
			if probe, err := cfg.Prober.Probe(ctx, path); err == nil {
				asset.Duration = probe.Duration
			} else {
				cfg.Logger.Warn("probe failed, duration stays zero", "asset_id", asset.ID, "error", err)
			}
		}

		if _, err := cfg.Projects.RegisterAsset(ctx, projectID, asset); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to update asset", "INTERNAL_ERROR")
			return
		}

		// An open session sees the new asset immediately.
		if s, ok := cfg.Sessions.GetByProject(projectID); ok {
			s.Library().Add(asset)
		}

		WriteJSON(w, http.StatusCreated, asset)
	}
}

func assetType(t string) string {
	switch t {
	case timeline.AssetTypeAudio, timeline.AssetTypeImage:
		return t
	default:
		return timeline.AssetTypeVideo
	}
}

func setAssetDurationHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetDurationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		assetID := chi.URLParam(r, "id")
		if err := cfg.Projects.SetAssetDuration(r.Context(), assetID, req.Duration); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		for _, s := range sessionsWithAsset(cfg, assetID) {
			if a := s.Library().Get(assetID); a != nil {
				a.Duration = req.Duration
			}
		}

		WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

func uploadTranscriptHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TranscriptUploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		source := req.Source
		if source != timeline.TranscriptSourceAI {
			source = timeline.TranscriptSourceUpload
		}
		tr := &timeline.Transcription{Source: source}
		for _, wd := range req.Words {
			tr.Words = append(tr.Words, timeline.Word{Text: wd.Word, StartMs: wd.Start, EndMs: wd.End})
		}

		assetID := chi.URLParam(r, "id")
		if err := cfg.Projects.SaveTranscription(r.Context(), assetID, tr); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		for _, s := range sessionsWithAsset(cfg, assetID) {
			s.Library().SetTranscription(assetID, tr.Clone())
		}

		WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "saved", "words": len(tr.Words)})
	}
}

// sessionsWithAsset finds open sessions whose library carries the asset.
func sessionsWithAsset(cfg ServerConfig, assetID string) []*session.Session {
	var out []*session.Session
	for _, s := range cfg.Sessions.All() {
		if s.Library().Get(assetID) != nil {
			out = append(out, s)
		}
	}
	return out
}

func mediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID := chi.URLParam(r, "assetID")

		path := cfg.Media.Path(assetID)
		if path == "" {
			asset, err := cfg.Projects.GetAsset(r.Context(), assetID)
			if err != nil || asset == nil || asset.Src == "" {
				WriteError(w, http.StatusNotFound, "media not found", "NOT_FOUND")
				return
			}
			path = asset.Src
		}

		if err := cfg.Media.ServeFile(w, r, path); err != nil {
			cfg.Logger.Error("media streaming failed", "asset_id", assetID, "error", err)
		}
	}
}

func listMarkersHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		markers, err := cfg.Projects.ListMarkers(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list markers", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, markers)
	}
}

func addMarkerHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MarkerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		m, err := cfg.Projects.AddMarker(r.Context(), chi.URLParam(r, "id"), req.Time, req.Label, req.Color)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		WriteJSON(w, http.StatusCreated, m)
	}
}

func deleteMarkerHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Projects.DeleteMarker(r.Context(), chi.URLParam(r, "id")); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to delete marker", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func createExportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		projectID := chi.URLParam(r, "id")

		// Flush the live session so the export sees the latest edits.
		if s, ok := cfg.Sessions.GetByProject(projectID); ok {
			if err := cfg.Projects.SaveTimeline(r.Context(), projectID, s.State()); err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to save timeline", "INTERNAL_ERROR")
				return
			}
		}

		job, err := cfg.Projects.CreateExportJob(r.Context(), projectID, req.Type)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		WriteJSON(w, http.StatusAccepted, JobToResponse(job))
	}
}

func listJobsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := cfg.Projects.ListJobs(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list jobs", "INTERNAL_ERROR")
			return
		}
		resp := make([]JobResponse, len(jobs))
		for i, j := range jobs {
			resp[i] = JobToResponse(j)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := cfg.Projects.GetJob(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to get job", "INTERNAL_ERROR")
			return
		}
		if job == nil {
			WriteError(w, http.StatusNotFound, "job not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, JobToResponse(job))
	}
}
