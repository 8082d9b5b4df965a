// Package fcpxml reads and writes FCP7-style xmeml documents. Import maps
// clipitems onto the first video track; export writes a single-track
// sequence at the project frame rate.
package fcpxml

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/cutroom/cutroom-engine/internal/timeline"
)

// DefaultFrameRate is the timebase assumed when a document does not
// declare one.
const DefaultFrameRate = 24

type xmeml struct {
	XMLName xml.Name `xml:"xmeml"`
	Version string   `xml:"version,attr"`
	Project project  `xml:"project"`
}

type project struct {
	Name     string   `xml:"name"`
	Children children `xml:"children"`
}

type children struct {
	Sequence sequence `xml:"sequence"`
}

type sequence struct {
	Name  string `xml:"name"`
	Rate  rate   `xml:"rate"`
	Media media  `xml:"media"`
}

type rate struct {
	Timebase int    `xml:"timebase"`
	NTSC     string `xml:"ntsc"`
}

type media struct {
	Video video `xml:"video"`
}

type video struct {
	Track track `xml:"track"`
}

type track struct {
	ClipItems []clipItem `xml:"clipitem"`
}

type clipItem struct {
	ID       string   `xml:"id,attr,omitempty"`
	Name     string   `xml:"name"`
	Duration int      `xml:"duration,omitempty"`
	Rate     *rate    `xml:"rate,omitempty"`
	Start    int      `xml:"start"`
	End      int      `xml:"end"`
	In       int      `xml:"in"`
	Out      int      `xml:"out"`
	File     *fileRef `xml:"file,omitempty"`
}

type fileRef struct {
	ID   string `xml:"id,attr,omitempty"`
	Name string `xml:"name,omitempty"`
}

// Parse reads an xmeml document and returns the clips it describes, in
// document order, positioned and trimmed in seconds. Frame values divide
// by the sequence timebase, falling back to DefaultFrameRate.
func Parse(r io.Reader) ([]*timeline.TimelineClip, error) {
	var doc xmeml
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse xmeml: %w", err)
	}

	fps := float64(doc.Project.Children.Sequence.Rate.Timebase)
	if fps <= 0 {
		fps = DefaultFrameRate
	}

	items := doc.Project.Children.Sequence.Media.Video.Track.ClipItems
	clips := make([]*timeline.TimelineClip, 0, len(items))
	for i, item := range items {
		name := item.Name
		if name == "" {
			name = fmt.Sprintf("Clip %d", i+1)
		}

		sourceFile := ""
		assetID := fmt.Sprintf("file-%d", i)
		if item.File != nil {
			sourceFile = item.File.Name
			if item.File.ID != "" {
				assetID = item.File.ID
			}
		}

		clips = append(clips, &timeline.TimelineClip{
			ID:             timeline.NewID(),
			AssetID:        assetID,
			Name:           name,
			SourceFileName: sourceFile,
			Start:          float64(item.Start) / fps,
			End:            float64(item.End) / fps,
			TrimStart:      float64(item.In) / fps,
			TrimEnd:        float64(item.Out) / fps,
			Opacity:        100,
			Volume:         100,
		})
	}
	return clips, nil
}

// Import parses the document and replaces the first video track's clips
// wholesale. Imported clips are relinked against the library so existing
// media comes back online immediately.
func Import(r io.Reader, st *timeline.TimelineState, lib *timeline.Library) (*timeline.TimelineState, error) {
	clips, err := Parse(r)
	if err != nil {
		return nil, err
	}

	next := st.Clone()
	var target *timeline.TimelineTrack
	for _, t := range next.Tracks {
		if t.Type == timeline.TrackTypeVideo {
			target = t
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("timeline has no video track")
	}

	for _, c := range clips {
		c.TrackID = target.ID
		if asset, match := lib.Resolve(c); match != timeline.MatchNone {
			c.AssetID = asset.ID
		}
	}
	target.Clips = clips
	return next, nil
}

// Generate writes the timeline's first video track as an xmeml version 4
// document. Clips are laid out back to back in record order; in/out come
// from the clip trim window.
func Generate(w io.Writer, st *timeline.TimelineState, sequenceName string, frameRate int) error {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	if sequenceName == "" {
		sequenceName = "Rough Cut"
	}

	var items []clipItem
	timelineFrame := 0
	for _, t := range st.Tracks {
		if t.Type != timeline.TrackTypeVideo {
			continue
		}
		for i, c := range t.Clips {
			durationFrames := int(c.Duration() * float64(frameRate))
			items = append(items, clipItem{
				ID:       fmt.Sprintf("clipitem-%d", i),
				Name:     c.Name,
				Duration: durationFrames,
				Rate:     &rate{Timebase: frameRate, NTSC: "FALSE"},
				Start:    timelineFrame,
				End:      timelineFrame + durationFrames,
				In:       int(c.TrimStart * float64(frameRate)),
				Out:      int(c.TrimEnd * float64(frameRate)),
			})
			timelineFrame += durationFrames
		}
		break
	}

	doc := xmeml{
		Version: "4",
		Project: project{
			Name: sequenceName,
			Children: children{
				Sequence: sequence{
					Name: sequenceName,
					Rate: rate{Timebase: frameRate, NTSC: "FALSE"},
					Media: media{
						Video: video{Track: track{ClipItems: items}},
					},
				},
			},
		},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode xmeml: %w", err)
	}
	return nil
}
