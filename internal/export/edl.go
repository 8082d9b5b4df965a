// Package export serializes a timeline for downstream tooling: CMX 3600
// EDLs for conform, and the JSON payload the render and XML backends
// consume.
package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cutroom/cutroom-engine/internal/timeline"
)

// EDLResult carries the generated document plus the clips that could not
// be resolved to media and were skipped.
type EDLResult struct {
	Document   string
	ClipCount  int
	Unresolved []string
}

// GenerateEDL renders the timeline's video clips as a CMX 3600 EDL.
// Source in/out come from the clip trim window, record in/out from the
// clip's timeline position. Clips whose asset is missing from the library
// are listed in Unresolved and omitted from the document.
func GenerateEDL(st *timeline.TimelineState, lib *timeline.Library, title string, frameRate float64) EDLResult {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 24
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	result := EDLResult{}
	event := 0
	for _, clip := range videoClipsInOrder(st) {
		asset := lib.Get(clip.AssetID)
		if asset == nil {
			result.Unresolved = append(result.Unresolved, clip.Name)
			continue
		}

		mediaPath := asset.Src
		if mediaPath == "" {
			mediaPath = asset.RemoteSrc
		}

		event++
		srcIn := secToTimecode(clip.TrimStart, fps)
		srcOut := secToTimecode(clip.TrimEnd, fps)
		recIn := secToTimecode(clip.Start, fps)
		recOut := secToTimecode(clip.End, fps)

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", event, "AX", "V", srcIn, srcOut, recIn, recOut),
			fmt.Sprintf("* FROM CLIP NAME:  %s", clip.Name),
			fmt.Sprintf("* MEDIA PATH:  %s", mediaPath),
		)
	}

	lines = append(lines, "")
	result.Document = strings.Join(lines, "\n")
	result.ClipCount = event
	return result
}

// videoClipsInOrder flattens the video tracks into a single record-order
// list. Ties between tracks keep track order, so the upper track wins.
func videoClipsInOrder(st *timeline.TimelineState) []*timeline.TimelineClip {
	var clips []*timeline.TimelineClip
	for _, t := range st.Tracks {
		if t.Type != timeline.TrackTypeVideo {
			continue
		}
		clips = append(clips, t.Clips...)
	}
	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].Start < clips[j].Start
	})
	return clips
}

func secToTimecode(sec float64, fps int) string {
	totalFrames := int(math.Round(sec * float64(fps)))
	if totalFrames < 0 {
		totalFrames = 0
	}
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
