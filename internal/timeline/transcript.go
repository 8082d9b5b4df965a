package timeline

// Transcript range edits operate purely in source time: a word's
// millisecond timestamps map to seconds of the asset, independent of where
// the asset's clips currently sit on the timeline.

// WordRange converts a run of words to the source-time seconds they cover.
func WordRange(words []Word) (start, end float64) {
	if len(words) == 0 {
		return 0, 0
	}
	start = words[0].StartSec()
	end = words[0].EndSec()
	for _, w := range words[1:] {
		if w.StartSec() < start {
			start = w.StartSec()
		}
		if w.EndSec() > end {
			end = w.EndSec()
		}
	}
	return start, end
}

// DeleteRange removes the source window [rangeStart, rangeEnd) from every
// clip of the asset on every unlocked track. Depending on the overlap a
// clip is split in two, trimmed at one edge, or removed entirely; in
// magnetic mode the track is repacked afterwards.
func (e *Editor) DeleteRange(st *TimelineState, assetID string, rangeStart, rangeEnd float64) (*TimelineState, bool) {
	if rangeEnd-rangeStart <= Epsilon {
		return st, false
	}

	next := st.Clone()
	changed := false

	for _, t := range next.Tracks {
		if t.Locked {
			continue
		}
		var out []*TimelineClip
		trackChanged := false
		for _, c := range t.Clips {
			if c.AssetID != assetID || rangeStart >= c.TrimEnd || rangeEnd <= c.TrimStart {
				out = append(out, c)
				continue
			}
			trackChanged = true
			out = append(out, cutSourceRange(c, rangeStart, rangeEnd)...)
		}
		if !trackChanged {
			continue
		}
		t.Clips = out
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

// cutSourceRange applies one delete range to one overlapping clip and
// returns its replacement clips (possibly none). Degenerate leftovers are
// dropped rather than kept as zero-length clips.
func cutSourceRange(c *TimelineClip, deleteStart, deleteEnd float64) []*TimelineClip {
	interior := deleteStart > c.TrimStart+Epsilon && deleteEnd < c.TrimEnd-Epsilon
	if interior {
		part1 := c.Clone()
		part1.ID = c.ID + "-1"
		part1.TrimEnd = deleteStart
		part1.End = part1.Start + part1.TrimDuration()

		part2 := c.Clone()
		part2.ID = c.ID + "-2"
		part2.TrimStart = deleteEnd
		part2.Start = part1.End
		part2.End = part2.Start + part2.TrimDuration()
		return []*TimelineClip{part1, part2}
	}

	if deleteStart <= c.TrimStart+Epsilon && deleteEnd >= c.TrimEnd-Epsilon {
		// Whole clip consumed.
		return nil
	}

	if deleteStart <= c.TrimStart+Epsilon {
		// Head removed: trimStart advances, the clip shrinks from the front.
		cp := c.Clone()
		cp.TrimStart = deleteEnd
		cp.End = cp.Start + cp.TrimDuration()
		if cp.TrimDuration() <= Epsilon {
			return nil
		}
		return []*TimelineClip{cp}
	}

	// Tail removed: trimEnd retreats, the clip shrinks from the back.
	cp := c.Clone()
	cp.TrimEnd = deleteStart
	cp.End = cp.Start + cp.TrimDuration()
	if cp.TrimDuration() <= Epsilon {
		return nil
	}
	return []*TimelineClip{cp}
}

// RestoreRange re-inserts the source window [rangeStart, rangeEnd) of the
// asset as a new clip. Insertion point, in priority order: after a clip of
// the asset whose trim window ends at rangeStart; before one that starts
// at rangeEnd (shifting it and everything later right); otherwise at the
// playhead, pushing later clips right. DeleteRange followed by
// RestoreRange with the same bounds restores the covered interval union.
func (e *Editor) RestoreRange(st *TimelineState, assetID string, rangeStart, rangeEnd, playhead float64) (*TimelineState, bool) {
	dur := rangeEnd - rangeStart
	if dur <= Epsilon {
		return st, false
	}

	next := st.Clone()

	clip := &TimelineClip{
		ID:        NewID(),
		AssetID:   assetID,
		TrimStart: rangeStart,
		TrimEnd:   rangeEnd,
		Opacity:   100,
		Volume:    100,
	}
	if e.Library != nil {
		if a := e.Library.Get(assetID); a != nil {
			clip.Name = a.Name
			clip.SourceFileName = a.Name
		}
	}

	// (a) a clip whose source window abuts the restored range on the left.
	for _, t := range next.Tracks {
		if t.Locked {
			continue
		}
		for _, c := range t.Clips {
			if c.AssetID == assetID && nearlyEqual(c.TrimEnd, rangeStart) {
				insertAt(t, clip, c.End, dur)
				if e.Magnetic {
					packTrack(t)
				}
				return next, true
			}
		}
	}

	// (b) a clip whose source window abuts it on the right.
	for _, t := range next.Tracks {
		if t.Locked {
			continue
		}
		for _, c := range t.Clips {
			if c.AssetID == assetID && nearlyEqual(c.TrimStart, rangeEnd) {
				insertAt(t, clip, c.Start, dur)
				if e.Magnetic {
					packTrack(t)
				}
				return next, true
			}
		}
	}

	// (c) no neighbor: insert at the playhead on the track that holds the
	// asset's clips, or the first unlocked track of the matching type.
	track := e.restoreTrack(next, assetID)
	if track == nil {
		return st, false
	}
	if playhead < 0 {
		playhead = 0
	}
	insertAt(track, clip, playhead, dur)
	if e.Magnetic {
		packTrack(track)
	}
	return next, true
}

// insertAt places the clip at position on the track and ripples every clip
// at or past that position right by width.
func insertAt(t *TimelineTrack, clip *TimelineClip, position, width float64) {
	for _, c := range t.Clips {
		if c.Start >= position-Epsilon {
			c.Start += width
			c.End += width
		}
	}
	clip.TrackID = t.ID
	clip.Start = position
	clip.End = position + width
	t.Clips = append(t.Clips, clip)
}

func (e *Editor) restoreTrack(st *TimelineState, assetID string) *TimelineTrack {
	for _, t := range st.Tracks {
		if t.Locked {
			continue
		}
		for _, c := range t.Clips {
			if c.AssetID == assetID {
				return t
			}
		}
	}

	trackType := TrackTypeVideo
	if e.Library != nil {
		if a := e.Library.Get(assetID); a != nil && a.Type == AssetTypeAudio {
			trackType = TrackTypeAudio
		}
	}
	for _, t := range st.Tracks {
		if !t.Locked && t.Type == trackType {
			return t
		}
	}
	return nil
}
