package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cutroom/cutroom-engine/internal/autocut"
	"github.com/cutroom/cutroom-engine/internal/fcpxml"
	"github.com/cutroom/cutroom-engine/internal/logging"
	"github.com/cutroom/cutroom-engine/internal/session"
	"github.com/cutroom/cutroom-engine/internal/timeline"
)

func sessionToResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		SessionID: s.ID,
		ProjectID: s.ProjectID,
		Timeline:  s.State(),
		Selected:  s.Selected(),
		Playhead:  s.Playhead(),
		Magnetic:  s.Magnetic(),
		CanUndo:   s.CanUndo(),
		CanRedo:   s.CanRedo(),
	}
}

// getSession resolves the {id} route param, writing the error response on
// a miss.
func getSession(cfg ServerConfig, w http.ResponseWriter, r *http.Request) *session.Session {
	s, err := cfg.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
		return nil
	}
	return s
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return false
	}
	return true
}

func openSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OpenSessionRequest
		if !decode(w, r, &req) {
			return
		}

		ctx := r.Context()
		p, err := cfg.Projects.GetProject(ctx, req.ProjectID)
		if err != nil || p == nil {
			WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
			return
		}

		if existing, ok := cfg.Sessions.GetByProject(req.ProjectID); ok {
			WriteJSON(w, http.StatusOK, sessionToResponse(existing))
			return
		}

		state, err := cfg.Projects.LoadTimeline(ctx, req.ProjectID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to load timeline", "INTERNAL_ERROR")
			return
		}
		assets, err := cfg.Projects.ListAssets(ctx, req.ProjectID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to load assets", "INTERNAL_ERROR")
			return
		}

		s := session.New(req.ProjectID, state, timeline.NewLibrary(assets...),
			logging.WithProjectID(cfg.Logger, req.ProjectID))
		cfg.Sessions.Put(s)

		WriteJSON(w, http.StatusCreated, sessionToResponse(s))
	}
}

func getSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s := getSession(cfg, w, r); s != nil {
			WriteJSON(w, http.StatusOK, sessionToResponse(s))
		}
	}
}

// closeSessionHandler persists the session state before dropping it.
func closeSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}

		if err := cfg.Projects.SaveTimeline(r.Context(), s.ProjectID, s.State()); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to save timeline", "INTERNAL_ERROR")
			return
		}
		cfg.Sessions.Close(s.ID)
		WriteJSON(w, http.StatusOK, map[string]string{"status": "closed"})
	}
}

func saveSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		if err := cfg.Projects.SaveTimeline(r.Context(), s.ProjectID, s.State()); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to save timeline", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
	}
}

func addClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req AddClipRequest
		if !decode(w, r, &req) {
			return
		}

		asset := s.Library().Get(req.AssetID)
		if asset == nil {
			WriteError(w, http.StatusNotFound, "asset not found", "NOT_FOUND")
			return
		}

		id, ok := s.AddClip(asset)
		if !ok {
			WriteError(w, http.StatusUnprocessableEntity, "clip could not be placed", "NO_OP")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"clip_id":  id,
			"timeline": s.State(),
		})
	}
}

// opResult is the uniform mutation response: whether anything changed and
// the (possibly unchanged) timeline.
func opResult(w http.ResponseWriter, s *session.Session, changed bool) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"changed":  changed,
		"timeline": s.State(),
		"can_undo": s.CanUndo(),
		"can_redo": s.CanRedo(),
	})
}

func moveClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req MoveClipRequest
		if !decode(w, r, &req) {
			return
		}
		opResult(w, s, s.MoveClip(req.ClipID, req.TargetTrackID, req.NewStart))
	}
}

func moveClipsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req MoveClipsRequest
		if !decode(w, r, &req) {
			return
		}
		opResult(w, s, s.MoveClips(req.ClipIDs, req.Delta))
	}
}

func parseDirection(s string) (timeline.Direction, bool) {
	switch s {
	case "left":
		return timeline.DirLeft, true
	case "right":
		return timeline.DirRight, true
	default:
		return 0, false
	}
}

func nudgeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req NudgeRequest
		if !decode(w, r, &req) {
			return
		}
		dir, ok := parseDirection(req.Direction)
		if !ok {
			WriteError(w, http.StatusBadRequest, "direction must be left or right", "BAD_REQUEST")
			return
		}
		opResult(w, s, s.NudgeClips(req.ClipIDs, dir, req.Amount))
	}
}

func nudgeEdgeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req NudgeEdgeRequest
		if !decode(w, r, &req) {
			return
		}
		dir, ok := parseDirection(req.Direction)
		if !ok {
			WriteError(w, http.StatusBadRequest, "direction must be left or right", "BAD_REQUEST")
			return
		}
		var edge timeline.Edge
		switch req.Edge {
		case "start":
			edge = timeline.EdgeStart
		case "end":
			edge = timeline.EdgeEnd
		default:
			WriteError(w, http.StatusBadRequest, "edge must be start or end", "BAD_REQUEST")
			return
		}
		opResult(w, s, s.NudgeClipEdge(req.ClipID, edge, dir, req.Amount))
	}
}

func splitClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req SplitClipRequest
		if !decode(w, r, &req) {
			return
		}
		opResult(w, s, s.SplitClip(req.ClipID, req.Position))
	}
}

func splitAtPlayheadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		opResult(w, s, s.SplitAtPlayhead())
	}
}

func deleteClipsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req ClipIDsRequest
		if !decode(w, r, &req) {
			return
		}
		opResult(w, s, s.DeleteClips(req.ClipIDs))
	}
}

func rippleDeleteHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req ClipIDsRequest
		if !decode(w, r, &req) {
			return
		}
		opResult(w, s, s.RippleDelete(req.ClipIDs))
	}
}

func updateClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req UpdateClipRequest
		if !decode(w, r, &req) {
			return
		}
		opResult(w, s, s.UpdateClip(req.ClipID, timeline.ClipUpdate{
			Name:      req.Name,
			Start:     req.Start,
			TrimStart: req.TrimStart,
			TrimEnd:   req.TrimEnd,
			Opacity:   req.Opacity,
			Volume:    req.Volume,
		}))
	}
}

func undoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		opResult(w, s, s.Undo())
	}
}

func redoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		opResult(w, s, s.Redo())
	}
}

func selectionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req SelectRequest
		if !decode(w, r, &req) {
			return
		}

		var selected []string
		switch {
		case req.All:
			selected = s.SelectAll()
		case req.From != nil && req.To != nil:
			selected = s.SelectRange(*req.From, *req.To)
		default:
			s.Select(req.ClipIDs)
			selected = s.Selected()
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"selected": selected})
	}
}

func magneticHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req MagneticRequest
		if !decode(w, r, &req) {
			return
		}
		s.SetMagnetic(req.Magnetic)
		WriteJSON(w, http.StatusOK, map[string]bool{"magnetic": s.Magnetic()})
	}
}

func deleteRangeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req WordRangeRequest
		if !decode(w, r, &req) {
			return
		}

		changed := s.DeleteRange(req.AssetID, float64(req.StartMs)/1000.0, float64(req.EndMs)/1000.0)
		if changed {
			s.Library().MarkWords(req.AssetID, req.StartMs, req.EndMs, true)
		}
		opResult(w, s, changed)
	}
}

func restoreRangeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req WordRangeRequest
		if !decode(w, r, &req) {
			return
		}

		changed := s.RestoreRange(req.AssetID, float64(req.StartMs)/1000.0, float64(req.EndMs)/1000.0)
		if changed {
			s.Library().MarkWords(req.AssetID, req.StartMs, req.EndMs, false)
		}
		opResult(w, s, changed)
	}
}

// importXMLHandler replaces the first video track with the clips of an
// uploaded FCP7 XML document.
func importXMLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}

		next, err := fcpxml.Import(r.Body, s.State(), s.Library())
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		s.ReplaceTimeline(next)
		opResult(w, s, true)
	}
}

func autocutHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req AutocutRequest
		if !decode(w, r, &req) {
			return
		}

		asset := s.Library().Get(req.AssetID)
		if asset == nil {
			WriteError(w, http.StatusNotFound, "asset not found", "NOT_FOUND")
			return
		}
		if asset.Transcription == nil || len(asset.Transcription.Words) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "asset has no transcription", "NO_TRANSCRIPT")
			return
		}

		segments, stats := autocut.Analyze(asset.Transcription.Words, cfg.Logger)

		next := s.State()
		var target *timeline.TimelineTrack
		for _, t := range next.Tracks {
			if t.Type == trackTypeFor(asset) && !t.Locked {
				target = t
				break
			}
		}
		if target == nil {
			WriteError(w, http.StatusUnprocessableEntity, "no unlocked track for asset type", "NO_OP")
			return
		}
		target.Clips = autocut.BuildClips(asset, target.ID, segments)

		s.ReplaceTimeline(next)
		WriteJSON(w, http.StatusOK, AutocutResponse{
			Session: sessionToResponse(s),
			Stats:   stats,
		})
	}
}

func trackTypeFor(a *timeline.Asset) string {
	if a.Type == timeline.AssetTypeAudio {
		return timeline.TrackTypeAudio
	}
	return timeline.TrackTypeVideo
}

func playHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		s.Play(time.Now())
		WriteJSON(w, http.StatusOK, map[string]interface{}{"playing": true, "playhead": s.Playhead()})
	}
}

func pauseHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		s.Pause()
		WriteJSON(w, http.StatusOK, map[string]interface{}{"playing": false, "playhead": s.Playhead()})
	}
}

func seekHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		var req SeekRequest
		if !decode(w, r, &req) {
			return
		}
		s.Seek(req.Position)
		WriteJSON(w, http.StatusOK, map[string]interface{}{"playhead": s.Playhead()})
	}
}

func tickHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := getSession(cfg, w, r)
		if s == nil {
			return
		}
		pos := s.Tick(time.Now())
		var current *timeline.TimelineClip
		if c := s.CurrentClip(); c != nil {
			current = c
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"playhead": pos,
			"playing":  s.Playing(),
			"clip":     current,
		})
	}
}
