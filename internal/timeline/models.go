// Package timeline implements the editing engine for the Cutroom browser
// editor: the in-memory track/clip/asset model and the operations that keep
// it consistent under move, split, trim, transcript range edits and undo.
package timeline

import (
	"math"

	"github.com/google/uuid"
)

const (
	AssetTypeVideo = "video"
	AssetTypeAudio = "audio"
	AssetTypeImage = "image"

	TrackTypeVideo = "video"
	TrackTypeAudio = "audio"

	TranscriptSourceAI     = "ai"
	TranscriptSourceUpload = "upload"
)

// Marker colors accepted by the client.
const (
	MarkerBlue   = "blue"
	MarkerRed    = "red"
	MarkerGreen  = "green"
	MarkerYellow = "yellow"
)

const (
	// Epsilon absorbs floating error from pointer-drag math. All
	// position comparisons in the engine go through it.
	Epsilon = 0.05

	// MinClipDuration is the shortest clip any trim or split may leave
	// behind. Edits that would go below it are rejected as no-ops.
	MinClipDuration = 0.1
)

// Word is a single transcript word with millisecond timestamps.
type Word struct {
	Text    string `json:"text"`
	StartMs int    `json:"startMs"`
	EndMs   int    `json:"endMs"`
	Deleted bool   `json:"deleted,omitempty"`
}

// StartSec returns the word start in source-time seconds.
func (w Word) StartSec() float64 { return float64(w.StartMs) / 1000.0 }

// EndSec returns the word end in source-time seconds.
func (w Word) EndSec() float64 { return float64(w.EndMs) / 1000.0 }

type Transcription struct {
	Source string `json:"source"` // "ai" | "upload"
	Words  []Word `json:"words"`
}

func (t *Transcription) Clone() *Transcription {
	if t == nil {
		return nil
	}
	cp := &Transcription{Source: t.Source, Words: make([]Word, len(t.Words))}
	copy(cp.Words, t.Words)
	return cp
}

// Asset is a source media reference. Assets are created on import, have
// their duration filled in asynchronously once the media is decoded, and
// are never mutated by clip operations.
type Asset struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Name          string         `json:"name"`
	Src           string         `json:"src,omitempty"`       // local blob ref; empty means offline
	RemoteSrc     string         `json:"remoteSrc,omitempty"` // persisted server path
	Duration      float64        `json:"duration"`
	Transcription *Transcription `json:"transcription,omitempty"`
}

func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Transcription = a.Transcription.Clone()
	return &cp
}

// TimelineClip is a placed instance of an asset. Start/End are timeline
// seconds, TrimStart/TrimEnd the source-time window being played. At rest
// End-Start == TrimEnd-TrimStart within Epsilon.
type TimelineClip struct {
	ID             string  `json:"id"`
	AssetID        string  `json:"assetId"`
	TrackID        string  `json:"trackId"`
	Name           string  `json:"name"`
	SourceFileName string  `json:"sourceFileName,omitempty"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	TrimStart      float64 `json:"trimStart"`
	TrimEnd        float64 `json:"trimEnd"`
	Opacity        float64 `json:"opacity"`
	Volume         float64 `json:"volume"`
}

// Duration is the clip's timeline span.
func (c *TimelineClip) Duration() float64 { return c.End - c.Start }

// TrimDuration is the length of the source window.
func (c *TimelineClip) TrimDuration() float64 { return c.TrimEnd - c.TrimStart }

func (c *TimelineClip) Clone() *TimelineClip {
	cp := *c
	return &cp
}

type TimelineTrack struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Clips  []*TimelineClip `json:"clips"`
	Muted  bool            `json:"muted"`
	Locked bool            `json:"locked"`
	Height float64         `json:"height,omitempty"`
}

func (t *TimelineTrack) Clone() *TimelineTrack {
	cp := *t
	cp.Clips = make([]*TimelineClip, len(t.Clips))
	for i, c := range t.Clips {
		cp.Clips[i] = c.Clone()
	}
	return &cp
}

// Marker is an annotation at a point in time, independent of clips.
type Marker struct {
	ID        string  `json:"id"`
	Time      float64 `json:"time"`
	Label     string  `json:"label,omitempty"`
	Color     string  `json:"color"`
	CreatedAt int64   `json:"createdAt"`
}

// TimelineState is the whole timeline: the sole unit of undo snapshotting.
type TimelineState struct {
	Tracks  []*TimelineTrack `json:"tracks"`
	Markers []*Marker        `json:"markers,omitempty"`
}

// NewState creates the fixed session layout: two video tracks and one
// audio track.
func NewState() *TimelineState {
	return &TimelineState{
		Tracks: []*TimelineTrack{
			{ID: "track-1", Type: TrackTypeVideo},
			{ID: "track-2", Type: TrackTypeVideo},
			{ID: "track-3", Type: TrackTypeAudio},
		},
	}
}

func (s *TimelineState) Clone() *TimelineState {
	cp := &TimelineState{
		Tracks: make([]*TimelineTrack, len(s.Tracks)),
	}
	for i, t := range s.Tracks {
		cp.Tracks[i] = t.Clone()
	}
	if s.Markers != nil {
		cp.Markers = make([]*Marker, len(s.Markers))
		for i, m := range s.Markers {
			mc := *m
			cp.Markers[i] = &mc
		}
	}
	return cp
}

// Track returns the track with the given id, or nil.
func (s *TimelineState) Track(id string) *TimelineTrack {
	for _, t := range s.Tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// FindClip locates a clip anywhere on the timeline.
func (s *TimelineState) FindClip(clipID string) (*TimelineClip, *TimelineTrack) {
	for _, t := range s.Tracks {
		for _, c := range t.Clips {
			if c.ID == clipID {
				return c, t
			}
		}
	}
	return nil, nil
}

// Duration is the end of the last clip across all tracks.
func (s *TimelineState) Duration() float64 {
	max := 0.0
	for _, t := range s.Tracks {
		for _, c := range t.Clips {
			max = math.Max(max, c.End)
		}
	}
	return max
}

// NewID returns a fresh entity id.
func NewID() string {
	return uuid.NewString()
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}
