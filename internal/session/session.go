// Package session holds the live editing sessions of open projects. A
// session owns the current timeline state, its undo history, the editor
// and the selection; every mutation goes through it so the pre-mutation
// snapshot discipline cannot be bypassed.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cutroom/cutroom-engine/internal/timeline"
)

type Session struct {
	ID        string
	ProjectID string

	mu       sync.Mutex
	state    *timeline.TimelineState
	history  timeline.History
	editor   *timeline.Editor
	selected []string
	playhead timeline.Playhead
	logger   *slog.Logger
}

func New(projectID string, state *timeline.TimelineState, lib *timeline.Library, logger *slog.Logger) *Session {
	if state == nil {
		state = timeline.NewState()
	}
	return &Session{
		ID:        timeline.NewID(),
		ProjectID: projectID,
		state:     state,
		editor:    timeline.NewEditor(lib),
		logger:    logger,
	}
}

// State returns a deep copy of the current timeline.
func (s *Session) State() *timeline.TimelineState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Session) Library() *timeline.Library {
	return s.editor.Library
}

func (s *Session) Magnetic() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Magnetic
}

func (s *Session) SetMagnetic(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Magnetic = on
}

// apply commits an operation result: on change the pre-mutation state is
// pushed (clearing redo) and the new state goes live.
func (s *Session) apply(next *timeline.TimelineState, changed bool) bool {
	if !changed {
		return false
	}
	s.history.Push(s.state)
	s.state = next
	return true
}

func (s *Session) AddClip(asset *timeline.Asset) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, id, ok := s.editor.AddClip(s.state, asset)
	return id, s.apply(next, ok)
}

func (s *Session) MoveClip(clipID, targetTrackID string, newStart float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.editor.MoveClip(s.state, clipID, targetTrackID, newStart)
	return s.apply(next, ok)
}

func (s *Session) MoveClips(clipIDs []string, delta float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.editor.MoveClips(s.state, s.orSelection(clipIDs), delta)
	return s.apply(next, ok)
}

func (s *Session) NudgeClips(clipIDs []string, dir timeline.Direction, amount float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.editor.NudgeClips(s.state, s.orSelection(clipIDs), dir, amount)
	return s.apply(next, ok)
}

func (s *Session) NudgeClipEdge(clipID string, edge timeline.Edge, dir timeline.Direction, amount float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.editor.NudgeClipEdge(s.state, clipID, edge, dir, amount)
	return s.apply(next, ok)
}

func (s *Session) SplitClip(clipID string, position float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.editor.SplitClip(s.state, clipID, position)
	return s.apply(next, ok)
}

// SplitAtPlayhead splits the clip under the playhead and selects the
// trailing half.
func (s *Session) SplitAtPlayhead() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, trailing, ok := s.editor.SplitAtPlayhead(s.state, s.playhead.Position)
	if !s.apply(next, ok) {
		return false
	}
	s.selected = []string{trailing}
	return true
}

// DeleteClips removes the given clips, or the current selection when none
// are given, then clears the selection.
func (s *Session) DeleteClips(clipIDs []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.editor.DeleteClips(s.state, s.orSelection(clipIDs))
	if !s.apply(next, ok) {
		return false
	}
	s.selected = nil
	return true
}

func (s *Session) RippleDelete(clipIDs []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.editor.RippleDelete(s.state, s.orSelection(clipIDs))
	if !s.apply(next, ok) {
		return false
	}
	s.selected = nil
	return true
}

func (s *Session) UpdateClip(clipID string, upd timeline.ClipUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.editor.UpdateClip(s.state, clipID, upd)
	return s.apply(next, ok)
}

func (s *Session) DeleteRange(assetID string, rangeStart, rangeEnd float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.editor.DeleteRange(s.state, assetID, rangeStart, rangeEnd)
	return s.apply(next, ok)
}

func (s *Session) RestoreRange(assetID string, rangeStart, rangeEnd float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.editor.RestoreRange(s.state, assetID, rangeStart, rangeEnd, s.playhead.Position)
	return s.apply(next, ok)
}

// ReplaceTimeline swaps in a whole new state (XML import, auto-cut result)
// under the same history discipline as a local edit.
func (s *Session) ReplaceTimeline(next *timeline.TimelineState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Push(s.state)
	s.state = next.Clone()
	s.selected = nil
}

func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.history.Undo(s.state)
	if ok {
		s.state = st
	}
	return ok
}

func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.history.Redo(s.state)
	if ok {
		s.state = st
	}
	return ok
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

func (s *Session) Select(clipIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = append([]string(nil), clipIDs...)
}

func (s *Session) SelectRange(from, to float64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = timeline.ClipsInRange(s.state, from, to)
	return append([]string(nil), s.selected...)
}

func (s *Session) SelectAll() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = timeline.AllClipIDs(s.state)
	return append([]string(nil), s.selected...)
}

func (s *Session) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.selected...)
}

// orSelection substitutes the current selection for an empty id list.
func (s *Session) orSelection(ids []string) []string {
	if len(ids) > 0 {
		return ids
	}
	return s.selected
}

func (s *Session) Play(now time.Time)  { s.mu.Lock(); defer s.mu.Unlock(); s.playhead.Play(now) }
func (s *Session) Pause()              { s.mu.Lock(); defer s.mu.Unlock(); s.playhead.Pause() }
func (s *Session) Seek(pos float64)    { s.mu.Lock(); defer s.mu.Unlock(); s.playhead.Seek(pos) }
func (s *Session) Playing() bool       { s.mu.Lock(); defer s.mu.Unlock(); return s.playhead.Playing() }
func (s *Session) Playhead() float64   { s.mu.Lock(); defer s.mu.Unlock(); return s.playhead.Position }
func (s *Session) Tick(now time.Time) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playhead.Tick(now, s.state.Duration())
}

// CurrentClip is the playback lookup: the clip under the playhead, if any.
func (s *Session) CurrentClip() *timeline.TimelineClip {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, _ := timeline.ClipAt(s.state, s.playhead.Position)
	if c == nil {
		return nil
	}
	return c.Clone()
}
