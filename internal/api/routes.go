package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cutroom/cutroom-engine/internal/config"
	"github.com/cutroom/cutroom-engine/internal/project"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects", createProjectHandler(cfg))
		r.Get("/projects/{id}", getProjectHandler(cfg))
		r.Delete("/projects/{id}", deleteProjectHandler(cfg))

		r.Get("/projects/{id}/assets", listAssetsHandler(cfg))
		r.Post("/projects/{id}/assets", uploadAssetHandler(cfg))
		r.Put("/assets/{id}/duration", setAssetDurationHandler(cfg))
		r.Post("/assets/{id}/transcript", uploadTranscriptHandler(cfg))
		r.Get("/media/{assetID}", mediaHandler(cfg))

		r.Get("/projects/{id}/markers", listMarkersHandler(cfg))
		r.Post("/projects/{id}/markers", addMarkerHandler(cfg))
		r.Delete("/markers/{id}", deleteMarkerHandler(cfg))

		r.Post("/projects/{id}/export", createExportHandler(cfg))
		r.Get("/jobs", listJobsHandler(cfg))
		r.Get("/jobs/{id}", getJobHandler(cfg))

		r.Post("/sessions", openSessionHandler(cfg))
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", getSessionHandler(cfg))
			r.Delete("/", closeSessionHandler(cfg))
			r.Post("/save", saveSessionHandler(cfg))

			r.Post("/clips", addClipHandler(cfg))
			r.Post("/ops/move", moveClipHandler(cfg))
			r.Post("/ops/move-many", moveClipsHandler(cfg))
			r.Post("/ops/nudge", nudgeHandler(cfg))
			r.Post("/ops/nudge-edge", nudgeEdgeHandler(cfg))
			r.Post("/ops/split", splitClipHandler(cfg))
			r.Post("/ops/split-playhead", splitAtPlayheadHandler(cfg))
			r.Post("/ops/delete", deleteClipsHandler(cfg))
			r.Post("/ops/ripple-delete", rippleDeleteHandler(cfg))
			r.Post("/ops/update", updateClipHandler(cfg))

			r.Post("/undo", undoHandler(cfg))
			r.Post("/redo", redoHandler(cfg))
			r.Post("/selection", selectionHandler(cfg))
			r.Post("/magnetic", magneticHandler(cfg))

			r.Post("/transcript/delete-range", deleteRangeHandler(cfg))
			r.Post("/transcript/restore-range", restoreRangeHandler(cfg))

			r.Post("/import/xml", importXMLHandler(cfg))
			r.Post("/autocut", autocutHandler(cfg))

			r.Post("/play", playHandler(cfg))
			r.Post("/pause", pauseHandler(cfg))
			r.Post("/seek", seekHandler(cfg))
			r.Post("/tick", tickHandler(cfg))
		})
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  config.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		projects, _ := cfg.Projects.ListProjects(ctx)
		jobs, _ := cfg.Repository.ListJobs(ctx, 10)

		state := "idle"
		var activeJob *JobResponse
		jobsRunning := 0
		lastError := ""

		if cfg.Runner != nil && cfg.Runner.IsPaused() {
			state = "paused"
		}

		for _, j := range jobs {
			if j.Status == project.JobStatusRunning {
				state = "exporting"
				resp := JobToResponse(j)
				activeJob = &resp
				jobsRunning++
			}
			if j.Status == project.JobStatusFailed && lastError == "" {
				lastError = j.Error
			}
		}

		if lastError != "" && state == "idle" {
			state = "error"
		}

		WriteJSON(w, http.StatusOK, StatusResponse{
			State:         state,
			LastError:     lastError,
			ProjectsCount: len(projects),
			SessionsOpen:  cfg.Sessions.Count(),
			JobsRunning:   jobsRunning,
			ActiveJob:     activeJob,
		})
	}
}
