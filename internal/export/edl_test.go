package export

import (
	"strings"
	"testing"

	"github.com/cutroom/cutroom-engine/internal/timeline"
)

func testState() (*timeline.TimelineState, *timeline.Library) {
	lib := timeline.NewLibrary(
		&timeline.Asset{ID: "asset-1", Type: timeline.AssetTypeVideo, Name: "intro.mp4", Src: "/media/intro.mp4", Duration: 30},
		&timeline.Asset{ID: "asset-2", Type: timeline.AssetTypeVideo, Name: "main.mp4", RemoteSrc: "/artifacts/main.mp4", Duration: 60},
	)
	st := timeline.NewState()
	st.Tracks[0].Clips = []*timeline.TimelineClip{
		{ID: "c1", AssetID: "asset-1", TrackID: "track-1", Name: "Intro", Start: 0, End: 2, TrimStart: 0, TrimEnd: 2},
		{ID: "c2", AssetID: "asset-2", TrackID: "track-1", Name: "Main", Start: 2, End: 3.5, TrimStart: 10, TrimEnd: 11.5},
	}
	return st, lib
}

func TestGenerateEDL_Basic(t *testing.T) {
	st, lib := testState()

	result := GenerateEDL(st, lib, "Project One", 24.0)

	if result.ClipCount != 2 {
		t.Fatalf("ClipCount = %d, want 2", result.ClipCount)
	}
	if len(result.Unresolved) != 0 {
		t.Fatalf("Unresolved = %v, want none", result.Unresolved)
	}
	edl := result.Document
	if !strings.Contains(edl, "TITLE: Project One") {
		t.Errorf("missing title: %q", edl)
	}
	if !strings.Contains(edl, "FCM: NON-DROP FRAME") {
		t.Errorf("missing non-drop-frame FCM: %q", edl)
	}
	if !strings.Contains(edl, "001  AX       V     C        00:00:00:00 00:00:02:00 00:00:00:00 00:00:02:00") {
		t.Errorf("first event line mismatch: %q", edl)
	}
	if !strings.Contains(edl, "002  AX       V     C        00:00:10:00 00:00:11:12 00:00:02:00 00:00:03:12") {
		t.Errorf("second event should use trim window as source: %q", edl)
	}
	if !strings.Contains(edl, "* FROM CLIP NAME:  Intro") {
		t.Errorf("missing clip name comment: %q", edl)
	}
	if !strings.Contains(edl, "* MEDIA PATH:  /artifacts/main.mp4") {
		t.Errorf("remote src fallback missing: %q", edl)
	}
}

func TestGenerateEDL_UnresolvedClipSkipped(t *testing.T) {
	st, lib := testState()
	st.Tracks[0].Clips = append(st.Tracks[0].Clips, &timeline.TimelineClip{
		ID: "c3", AssetID: "gone", TrackID: "track-1", Name: "Missing", Start: 3.5, End: 5,
	})

	result := GenerateEDL(st, lib, "Partial", 24.0)

	if result.ClipCount != 2 {
		t.Fatalf("ClipCount = %d, want 2", result.ClipCount)
	}
	if len(result.Unresolved) != 1 || result.Unresolved[0] != "Missing" {
		t.Fatalf("Unresolved = %v, want [Missing]", result.Unresolved)
	}
	if strings.Contains(result.Document, "003") {
		t.Errorf("unresolved clip produced an event: %q", result.Document)
	}
}

func TestGenerateEDL_DropFrame(t *testing.T) {
	st, lib := testState()
	result := GenerateEDL(st, lib, "Drop", 29.97)
	if !strings.Contains(result.Document, "FCM: DROP FRAME") {
		t.Fatalf("expected drop frame FCM, got: %q", result.Document)
	}
}

func TestGenerateEDL_AudioTracksExcluded(t *testing.T) {
	st, lib := testState()
	st.Tracks[2].Clips = []*timeline.TimelineClip{
		{ID: "a1", AssetID: "asset-1", TrackID: "track-3", Name: "VO", Start: 0, End: 2},
	}

	result := GenerateEDL(st, lib, "Video Only", 24.0)
	if result.ClipCount != 2 {
		t.Fatalf("ClipCount = %d, want 2 (audio excluded)", result.ClipCount)
	}
}

func TestSecToTimecode(t *testing.T) {
	tests := []struct {
		name string
		sec  float64
		fps  int
		want string
	}{
		{name: "zero", sec: 0, fps: 24, want: "00:00:00:00"},
		{name: "one second", sec: 1, fps: 24, want: "00:00:01:00"},
		{name: "half second", sec: 0.5, fps: 24, want: "00:00:00:12"},
		{name: "one minute", sec: 60, fps: 24, want: "00:01:00:00"},
		{name: "one hour", sec: 3600, fps: 24, want: "01:00:00:00"},
		{name: "negative clamps", sec: -1, fps: 24, want: "00:00:00:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := secToTimecode(tc.sec, tc.fps)
			if got != tc.want {
				t.Fatalf("secToTimecode(%f, %d) = %q, want %q", tc.sec, tc.fps, got, tc.want)
			}
		})
	}
}
