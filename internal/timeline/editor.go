package timeline

import "sort"

// Direction of a nudge.
type Direction int

const (
	DirLeft  Direction = -1
	DirRight Direction = 1
)

// Edge of a clip for edge nudges.
type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// Editor applies clip mutations. Every operation works on a clone of the
// input state and reports whether anything changed; an unchanged state is
// returned as-is so callers can skip the history push. Operations never
// error on user input: out-of-range edits clamp, degenerate ones no-op.
//
// Magnetic is the editor-wide layout mode: when on, mutated tracks are
// repacked gap-free. It is an explicit field rather than a global so tests
// and sessions can flip it per call site.
type Editor struct {
	Magnetic bool
	Library  *Library
}

func NewEditor(lib *Library) *Editor {
	return &Editor{Magnetic: true, Library: lib}
}

// assetDuration returns the source length for clamping, or -1 when the
// clip is offline and no bound is known.
func (e *Editor) assetDuration(clip *TimelineClip) float64 {
	if e.Library == nil {
		return -1
	}
	a, _ := e.Library.Resolve(clip)
	if a == nil || a.Duration <= 0 {
		return -1
	}
	return a.Duration
}

// AddClip appends a full-length clip of the asset to the first video or
// audio track, routed by asset type, starting where that track ends.
// Returns the new clip's id.
func (e *Editor) AddClip(st *TimelineState, asset *Asset) (*TimelineState, string, bool) {
	trackType := TrackTypeVideo
	if asset.Type == AssetTypeAudio {
		trackType = TrackTypeAudio
	}

	next := st.Clone()
	var track *TimelineTrack
	for _, t := range next.Tracks {
		if t.Type == trackType {
			track = t
			break
		}
	}
	if track == nil || track.Locked {
		return st, "", false
	}

	start := 0.0
	for _, c := range track.Clips {
		if c.End > start {
			start = c.End
		}
	}

	clip := &TimelineClip{
		ID:             NewID(),
		AssetID:        asset.ID,
		TrackID:        track.ID,
		Name:           asset.Name,
		SourceFileName: asset.Name,
		Start:          start,
		End:            start + asset.Duration,
		TrimStart:      0,
		TrimEnd:        asset.Duration,
		Opacity:        100,
		Volume:         100,
	}
	track.Clips = append(track.Clips, clip)
	if e.Magnetic {
		packTrack(track)
	}
	return next, clip.ID, true
}

// MoveClip transfers a clip to targetTrackID at newStart, preserving its
// duration. Both the source and the target track are repacked in magnetic
// mode. Locked source or target makes the whole move a no-op.
func (e *Editor) MoveClip(st *TimelineState, clipID, targetTrackID string, newStart float64) (*TimelineState, bool) {
	next := st.Clone()
	clip, src := next.FindClip(clipID)
	if clip == nil || src.Locked {
		return st, false
	}
	target := next.Track(targetTrackID)
	if target == nil || target.Locked {
		return st, false
	}

	for i, c := range src.Clips {
		if c.ID == clipID {
			src.Clips = append(src.Clips[:i], src.Clips[i+1:]...)
			break
		}
	}

	if newStart < 0 {
		newStart = 0
	}
	dur := clip.Duration()
	clip.TrackID = target.ID
	clip.Start = newStart
	clip.End = newStart + dur
	target.Clips = append(target.Clips, clip)

	if e.Magnetic {
		packTrack(src)
		packTrack(target)
	}
	return next, true
}

// MoveClips shifts every selected clip by delta, floored at zero. Tracks
// holding none of the selection are untouched; locked tracks refuse.
func (e *Editor) MoveClips(st *TimelineState, clipIDs []string, delta float64) (*TimelineState, bool) {
	selected := idSet(clipIDs)
	next := st.Clone()
	changed := false

	for _, t := range next.Tracks {
		if t.Locked || !anySelected(t, selected) {
			continue
		}
		for _, c := range t.Clips {
			if !selected[c.ID] {
				continue
			}
			dur := c.Duration()
			c.Start += delta
			if c.Start < 0 {
				c.Start = 0
			}
			c.End = c.Start + dur
			changed = true
		}
		if e.Magnetic {
			packTrack(t)
		}
	}
	if !changed {
		return st, false
	}
	return next, true
}

// NudgeClips slips clip content in magnetic mode: the trim window slides
// by amount while the timeline placement stays put, clamped to the asset's
// source range. In non-magnetic mode it degrades to a plain move.
func (e *Editor) NudgeClips(st *TimelineState, clipIDs []string, dir Direction, amount float64) (*TimelineState, bool) {
	if !e.Magnetic {
		return e.MoveClips(st, clipIDs, float64(dir)*amount)
	}

	selected := idSet(clipIDs)
	next := st.Clone()
	changed := false

	for _, t := range next.Tracks {
		if t.Locked {
			continue
		}
		for _, c := range t.Clips {
			if !selected[c.ID] {
				continue
			}
			if e.slipClip(c, float64(dir)*amount) {
				changed = true
			}
		}
	}
	if !changed {
		return st, false
	}
	return next, true
}

// slipClip shifts the trim window by delta with compensating clamps at the
// source bounds. Offline clips are skipped: no source range is known.
func (e *Editor) slipClip(c *TimelineClip, delta float64) bool {
	assetDur := e.assetDuration(c)
	if assetDur < 0 {
		return false
	}

	ts := c.TrimStart + delta
	te := c.TrimEnd + delta
	if ts < 0 {
		te -= ts
		ts = 0
	}
	if te > assetDur {
		ts -= te - assetDur
		te = assetDur
	}
	if ts < 0 || nearlyEqual(ts, c.TrimStart) {
		// Window longer than the asset, or nothing to slip.
		return false
	}
	c.TrimStart = ts
	c.TrimEnd = te
	return true
}

// NudgeClipEdge extends or retracts one clip edge by amount. The start
// edge moves Start and TrimStart together (a local, ripple-free trim); the
// end edge moves End and TrimEnd, clamped to the asset duration. Edits
// that would leave less than MinClipDuration are rejected.
func (e *Editor) NudgeClipEdge(st *TimelineState, clipID string, edge Edge, dir Direction, amount float64) (*TimelineState, bool) {
	next := st.Clone()
	clip, track := next.FindClip(clipID)
	if clip == nil || track.Locked {
		return st, false
	}

	delta := float64(dir) * amount

	switch edge {
	case EdgeStart:
		ts := clip.TrimStart + delta
		if ts < 0 {
			delta -= ts
			ts = 0
		}
		if ts > clip.TrimEnd-MinClipDuration {
			return st, false
		}
		start := clip.Start + delta
		if start < 0 {
			return st, false
		}
		clip.TrimStart = ts
		clip.Start = start
	case EdgeEnd:
		te := clip.TrimEnd + delta
		if assetDur := e.assetDuration(clip); assetDur > 0 && te > assetDur {
			te = assetDur
		}
		if te < clip.TrimStart+MinClipDuration {
			return st, false
		}
		clip.End = clip.Start + (te - clip.TrimStart)
		clip.TrimEnd = te
	default:
		return st, false
	}

	if e.Magnetic {
		packTrack(track)
	}
	return next, true
}

// SplitClip cuts a clip at a timeline position strictly inside it,
// replacing it with two derived clips ("id-1", "id-2") that together cover
// the same timeline span and source window.
func (e *Editor) SplitClip(st *TimelineState, clipID string, position float64) (*TimelineState, bool) {
	next := st.Clone()
	clip, track := next.FindClip(clipID)
	if clip == nil || track.Locked {
		return st, false
	}
	if position <= clip.Start+Epsilon || position >= clip.End-Epsilon {
		return st, false
	}

	offset := position - clip.Start

	first := clip.Clone()
	first.ID = clip.ID + "-1"
	first.End = position
	first.TrimEnd = clip.TrimStart + offset

	second := clip.Clone()
	second.ID = clip.ID + "-2"
	second.Start = position
	second.TrimStart = clip.TrimStart + offset

	for i, c := range track.Clips {
		if c.ID == clipID {
			track.Clips = append(track.Clips[:i], append([]*TimelineClip{first, second}, track.Clips[i+1:]...)...)
			break
		}
	}
	if e.Magnetic {
		packTrack(track)
	}
	return next, true
}

// SplitAtPlayhead splits the clip under the playhead on the first unlocked
// track that has one, returning the trailing half's id so the caller can
// select it.
func (e *Editor) SplitAtPlayhead(st *TimelineState, position float64) (*TimelineState, string, bool) {
	for _, t := range st.Tracks {
		if t.Locked {
			continue
		}
		for _, c := range t.Clips {
			if position > c.Start+Epsilon && position < c.End-Epsilon {
				next, ok := e.SplitClip(st, c.ID, position)
				if !ok {
					return st, "", false
				}
				return next, c.ID + "-2", true
			}
		}
	}
	return st, "", false
}

// DeleteClips removes the given clips and repacks affected tracks in
// magnetic mode.
func (e *Editor) DeleteClips(st *TimelineState, clipIDs []string) (*TimelineState, bool) {
	selected := idSet(clipIDs)
	next := st.Clone()
	changed := false

	for _, t := range next.Tracks {
		if t.Locked {
			continue
		}
		kept := t.Clips[:0]
		removed := false
		for _, c := range t.Clips {
			if selected[c.ID] {
				removed = true
				continue
			}
			kept = append(kept, c)
		}
		if !removed {
			continue
		}
		t.Clips = append([]*TimelineClip(nil), kept...)
		if e.Magnetic {
			packTrack(t)
		}
		changed = true
	}
	if !changed {
		return st, false
	}
	return next, true
}

// RippleDelete removes the clips and closes each gap left behind by
// shifting every later clip left by the deleted span, in start order.
// Unlike DeleteClips under magnetic mode this preserves explicit positions
// of clips the ripple never reaches, so it applies to non-magnetic tracks
// too.
func (e *Editor) RippleDelete(st *TimelineState, clipIDs []string) (*TimelineState, bool) {
	selected := idSet(clipIDs)

	type interval struct{ start, width float64 }
	var removed []interval

	next := st.Clone()
	changed := false
	for _, t := range next.Tracks {
		if t.Locked {
			continue
		}
		kept := t.Clips[:0]
		for _, c := range t.Clips {
			if selected[c.ID] {
				removed = append(removed, interval{start: c.Start, width: c.Duration()})
				changed = true
				continue
			}
			kept = append(kept, c)
		}
		t.Clips = append([]*TimelineClip(nil), kept...)
	}
	if !changed {
		return st, false
	}

	sort.Slice(removed, func(i, j int) bool { return removed[i].start < removed[j].start })

	shifted := 0.0
	for _, iv := range removed {
		edge := iv.start + iv.width - shifted
		for _, t := range next.Tracks {
			if t.Locked {
				continue
			}
			for _, c := range t.Clips {
				if c.Start >= edge-Epsilon {
					c.Start -= iv.width
					c.End -= iv.width
				}
			}
		}
		shifted += iv.width
	}
	return next, true
}

// ClipUpdate is a partial field merge for UpdateClip. Nil fields are left
// alone.
type ClipUpdate struct {
	Name      *string  `json:"name,omitempty"`
	Start     *float64 `json:"start,omitempty"`
	TrimStart *float64 `json:"trimStart,omitempty"`
	TrimEnd   *float64 `json:"trimEnd,omitempty"`
	Opacity   *float64 `json:"opacity,omitempty"`
	Volume    *float64 `json:"volume,omitempty"`
}

// UpdateClip merges a partial update into a clip. Trim edits are clamped
// to the asset's source range and rejected outright if the result would be
// shorter than MinClipDuration.
func (e *Editor) UpdateClip(st *TimelineState, clipID string, upd ClipUpdate) (*TimelineState, bool) {
	next := st.Clone()
	clip, track := next.FindClip(clipID)
	if clip == nil || track.Locked {
		return st, false
	}

	if upd.Name != nil {
		clip.Name = *upd.Name
	}
	if upd.Opacity != nil {
		clip.Opacity = clamp(*upd.Opacity, 0, 100)
	}
	if upd.Volume != nil {
		clip.Volume = clamp(*upd.Volume, 0, 100)
	}
	if upd.Start != nil {
		dur := clip.Duration()
		clip.Start = *upd.Start
		if clip.Start < 0 {
			clip.Start = 0
		}
		clip.End = clip.Start + dur
	}

	if upd.TrimStart != nil || upd.TrimEnd != nil {
		ts, te := clip.TrimStart, clip.TrimEnd
		if upd.TrimStart != nil {
			ts = *upd.TrimStart
		}
		if upd.TrimEnd != nil {
			te = *upd.TrimEnd
		}
		if ts < 0 {
			ts = 0
		}
		if assetDur := e.assetDuration(clip); assetDur > 0 && te > assetDur {
			te = assetDur
		}
		if te-ts < MinClipDuration {
			return st, false
		}
		clip.TrimStart = ts
		clip.TrimEnd = te
		clip.End = clip.Start + (te - ts)
	}

	if e.Magnetic {
		packTrack(track)
	}
	return next, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func anySelected(t *TimelineTrack, selected map[string]bool) bool {
	for _, c := range t.Clips {
		if selected[c.ID] {
			return true
		}
	}
	return false
}
