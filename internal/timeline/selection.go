package timeline

// ClipAt returns the clip under a timeline position, scanning tracks top
// to bottom. Used by playback each tick and by split-at-playhead.
func ClipAt(st *TimelineState, position float64) (*TimelineClip, *TimelineTrack) {
	for _, t := range st.Tracks {
		for _, c := range t.Clips {
			if position >= c.Start && position < c.End {
				return c, t
			}
		}
	}
	return nil, nil
}

// ClipsInRange returns the ids of every clip overlapping [from, to) on any
// track, for range selection.
func ClipsInRange(st *TimelineState, from, to float64) []string {
	if to < from {
		from, to = to, from
	}
	var ids []string
	for _, t := range st.Tracks {
		for _, c := range t.Clips {
			if c.Start < to && c.End > from {
				ids = append(ids, c.ID)
			}
		}
	}
	return ids
}

// AllClipIDs returns every clip id on the timeline, for select-all.
func AllClipIDs(st *TimelineState) []string {
	var ids []string
	for _, t := range st.Tracks {
		for _, c := range t.Clips {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
