package timeline

import (
	"math"
	"sort"
	"testing"

	"pgregory.net/rapid"
)

func TestWordRange(t *testing.T) {
	words := []Word{
		{Text: "so", StartMs: 1500, EndMs: 1900},
		{Text: "anyway", StartMs: 2000, EndMs: 2600},
	}
	start, end := WordRange(words)
	if start != 1.5 || end != 2.6 {
		t.Fatalf("WordRange = [%v, %v], want [1.5, 2.6]", start, end)
	}
	if s, e := WordRange(nil); s != 0 || e != 0 {
		t.Errorf("WordRange(nil) = [%v, %v]", s, e)
	}
}

func TestEditor_DeleteRange_Interior(t *testing.T) {
	e := NewEditor(testLibrary())
	e.Magnetic = false
	st := stateWith(clip("c1", "asset-1", "track-1", 100, 0, 10))

	next, ok := e.DeleteRange(st, "asset-1", 2, 4)
	if !ok {
		t.Fatal("DeleteRange failed")
	}
	track := next.Track("track-1")
	if len(track.Clips) != 2 {
		t.Fatalf("track has %d clips, want 2", len(track.Clips))
	}
	p1, p2 := track.Clips[0], track.Clips[1]
	if p1.TrimStart != 0 || p1.TrimEnd != 2 || p1.Start != 100 || p1.End != 102 {
		t.Errorf("part1 = %+v, want trim [0,2] at [100,102]", p1)
	}
	if p2.TrimStart != 4 || p2.TrimEnd != 10 || p2.Start != 102 || p2.End != 108 {
		t.Errorf("part2 = %+v, want trim [4,10] at [102,108]", p2)
	}
}

func TestEditor_DeleteRange_Edges(t *testing.T) {
	tests := []struct {
		name       string
		rangeStart float64
		rangeEnd   float64
		wantClips  int
		wantTrim   [2]float64
	}{
		{"head", 0, 3, 1, [2]float64{3, 10}},
		{"tail", 7, 10, 1, [2]float64{0, 7}},
		{"whole clip", 0, 10, 0, [2]float64{}},
		{"past the edges", -5, 25, 0, [2]float64{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEditor(testLibrary())
			e.Magnetic = false
			st := stateWith(clip("c1", "asset-1", "track-1", 50, 0, 10))

			next, ok := e.DeleteRange(st, "asset-1", tc.rangeStart, tc.rangeEnd)
			if !ok {
				t.Fatal("DeleteRange failed")
			}
			track := next.Track("track-1")
			if len(track.Clips) != tc.wantClips {
				t.Fatalf("track has %d clips, want %d", len(track.Clips), tc.wantClips)
			}
			if tc.wantClips == 0 {
				return
			}
			c := track.Clips[0]
			if c.TrimStart != tc.wantTrim[0] || c.TrimEnd != tc.wantTrim[1] {
				t.Errorf("trim = [%v, %v], want %v", c.TrimStart, c.TrimEnd, tc.wantTrim)
			}
			if c.Start != 50 {
				t.Errorf("start = %v, want unchanged 50 (non-magnetic)", c.Start)
			}
			if !nearlyEqual(c.Duration(), c.TrimDuration()) {
				t.Error("duration conservation broken")
			}
		})
	}
}

func TestEditor_DeleteRange_OnlyMatchingAsset(t *testing.T) {
	e := NewEditor(testLibrary())
	st := stateWith(
		clip("c1", "asset-1", "track-1", 0, 0, 10),
		clip("c2", "asset-2", "track-3", 0, 0, 10),
	)

	next, ok := e.DeleteRange(st, "asset-1", 0, 10)
	if !ok {
		t.Fatal("DeleteRange failed")
	}
	if got, _ := next.FindClip("c2"); got == nil {
		t.Error("clip of another asset was touched")
	}
	if got, _ := next.FindClip("c1"); got != nil {
		t.Error("consumed clip should be gone")
	}
}

func TestEditor_DeleteRange_LockedTrack(t *testing.T) {
	e := NewEditor(testLibrary())
	st := stateWith(clip("c1", "asset-1", "track-1", 0, 0, 10))
	st.Tracks[0].Locked = true

	if _, ok := e.DeleteRange(st, "asset-1", 2, 4); ok {
		t.Fatal("DeleteRange on locked track should no-op")
	}
}

func TestEditor_DeleteRange_MagneticRepack(t *testing.T) {
	e := NewEditor(testLibrary())
	st := stateWith(
		clip("c1", "asset-1", "track-1", 0, 0, 10),
		clip("c2", "asset-1", "track-1", 10, 10, 15),
	)

	next, ok := e.DeleteRange(st, "asset-1", 2, 4)
	if !ok {
		t.Fatal("DeleteRange failed")
	}
	track := next.Track("track-1")
	wantStarts := []float64{0, 2, 8}
	if len(track.Clips) != 3 {
		t.Fatalf("track has %d clips, want 3", len(track.Clips))
	}
	for i, c := range track.Clips {
		if !nearlyEqual(c.Start, wantStarts[i]) {
			t.Errorf("clip %d start = %v, want %v", i, c.Start, wantStarts[i])
		}
	}
}

func TestEditor_RestoreRange_AfterAbuttingClip(t *testing.T) {
	e := NewEditor(testLibrary())
	e.Magnetic = false
	st := stateWith(
		clip("c1", "asset-1", "track-1", 0, 0, 2),
		clip("c2", "asset-1", "track-1", 2, 4, 10),
	)

	// [2,4) was deleted earlier; c1's trim window ends exactly at 2.
	next, ok := e.RestoreRange(st, "asset-1", 2, 4, 99)
	if !ok {
		t.Fatal("RestoreRange failed")
	}
	track := next.Track("track-1")
	if len(track.Clips) != 3 {
		t.Fatalf("track has %d clips, want 3", len(track.Clips))
	}

	var restored *TimelineClip
	for _, c := range track.Clips {
		if c.TrimStart == 2 && c.TrimEnd == 4 {
			restored = c
		}
	}
	if restored == nil {
		t.Fatal("restored clip not found")
	}
	if restored.Start != 2 || restored.End != 4 {
		t.Errorf("restored at [%v, %v], want [2, 4] after c1", restored.Start, restored.End)
	}
	c2, _ := next.FindClip("c2")
	if c2.Start != 4 {
		t.Errorf("c2 start = %v, want rippled to 4", c2.Start)
	}
}

func TestEditor_RestoreRange_BeforeAbuttingClip(t *testing.T) {
	e := NewEditor(testLibrary())
	e.Magnetic = false
	st := stateWith(clip("c2", "asset-1", "track-1", 5, 4, 10))

	next, ok := e.RestoreRange(st, "asset-1", 2, 4, 99)
	if !ok {
		t.Fatal("RestoreRange failed")
	}
	track := next.Track("track-1")
	var restored *TimelineClip
	for _, c := range track.Clips {
		if c.TrimStart == 2 {
			restored = c
		}
	}
	if restored == nil || restored.Start != 5 || restored.End != 7 {
		t.Fatalf("restored = %+v, want inserted at [5, 7]", restored)
	}
	c2, _ := next.FindClip("c2")
	if c2.Start != 7 || c2.End != 13 {
		t.Errorf("c2 = [%v, %v], want shifted [7, 13]", c2.Start, c2.End)
	}
}

func TestEditor_RestoreRange_AtPlayhead(t *testing.T) {
	e := NewEditor(testLibrary())
	e.Magnetic = false
	st := stateWith(
		clip("c1", "asset-1", "track-1", 0, 0, 2),
		clip("c2", "asset-1", "track-1", 6, 8, 10),
	)

	next, ok := e.RestoreRange(st, "asset-1", 4, 5, 6)
	if !ok {
		t.Fatal("RestoreRange failed")
	}
	c1, _ := next.FindClip("c1")
	c2, _ := next.FindClip("c2")
	if c1.Start != 0 {
		t.Errorf("c1 moved: start = %v", c1.Start)
	}
	if c2.Start != 7 {
		t.Errorf("c2 start = %v, want pushed to 7", c2.Start)
	}
	restored, _ := ClipAt(next, 6.5)
	if restored == nil || restored.TrimStart != 4 || restored.TrimEnd != 5 {
		t.Errorf("restored clip at playhead = %+v", restored)
	}
}

// coveredIntervals returns the merged (trimStart, trimEnd) interval union
// of the asset's clips across the timeline.
func coveredIntervals(st *TimelineState, assetID string) [][2]float64 {
	var ivs [][2]float64
	for _, t := range st.Tracks {
		for _, c := range t.Clips {
			if c.AssetID == assetID {
				ivs = append(ivs, [2]float64{c.TrimStart, c.TrimEnd})
			}
		}
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i][0] < ivs[j][0] })
	var merged [][2]float64
	for _, iv := range ivs {
		if n := len(merged); n > 0 && iv[0] <= merged[n-1][1]+Epsilon {
			if iv[1] > merged[n-1][1] {
				merged[n-1][1] = iv[1]
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

func intervalsEqual(a, b [][2]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i][0]-b[i][0]) > Epsilon || math.Abs(a[i][1]-b[i][1]) > Epsilon {
			return false
		}
	}
	return true
}

// Delete/restore inverse: deleting a source range and restoring the same
// bounds leaves the asset's covered interval union unchanged, whatever the
// insertion playhead. Clip identities may differ.
func TestEditor_DeleteRestore_Inverse(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := NewEditor(testLibrary())
		e.Magnetic = rapid.Bool().Draw(rt, "magnetic")
		st := stateWith(clip("c1", "asset-1", "track-1", 0, 0, 15))

		// Keep every leftover piece either empty or comfortably above the
		// degenerate-duration cutoff.
		var s float64
		if rapid.Bool().Draw(rt, "from_head") {
			s = 0
		} else {
			s = rapid.Float64Range(0.5, 14).Draw(rt, "s")
		}
		var edur float64
		if rapid.Bool().Draw(rt, "to_tail") {
			edur = 15 - s
		} else {
			edur = rapid.Float64Range(0.3, 15-s-0.4).Draw(rt, "dur")
		}
		end := s + edur

		before := coveredIntervals(st, "asset-1")

		st2, ok := e.DeleteRange(st, "asset-1", s, end)
		if !ok {
			rt.Fatalf("DeleteRange(%v, %v) no-opped", s, end)
		}
		playhead := rapid.Float64Range(0, 20).Draw(rt, "playhead")
		st3, ok := e.RestoreRange(st2, "asset-1", s, end, playhead)
		if !ok {
			rt.Fatalf("RestoreRange(%v, %v) no-opped", s, end)
		}

		after := coveredIntervals(st3, "asset-1")
		if !intervalsEqual(before, after) {
			rt.Fatalf("interval union changed: %v -> %v (range [%v, %v])", before, after, s, end)
		}
	})
}
