package timeline

import "sort"

// Pack enforces the magnetic layout invariant on one track's clips: stable
// sort by start, then lay the clips end to end from zero. Each clip keeps
// its trim window; only Start/End are rewritten. Pure function, the input
// slice is not touched.
func Pack(clips []*TimelineClip) []*TimelineClip {
	out := make([]*TimelineClip, len(clips))
	for i, c := range clips {
		out[i] = c.Clone()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	pos := 0.0
	for _, c := range out {
		d := c.TrimDuration()
		c.Start = pos
		c.End = pos + d
		pos += d
	}
	return out
}

// packTrack repacks a track in place.
func packTrack(t *TimelineTrack) {
	t.Clips = Pack(t.Clips)
}
