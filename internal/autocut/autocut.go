// Package autocut derives a rough cut from transcript word timings: long
// silences are cut, repeated takes keep the last attempt, and spoken
// "cut that" signals drop the preceding sentence.
package autocut

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cutroom/cutroom-engine/internal/timeline"
)

const (
	// SilenceThreshold is the word gap, in seconds, treated as a cut
	// point rather than a natural pause.
	SilenceThreshold = 2.0

	// repetitionWindow bounds how far apart two takes can be and still
	// count as a retake.
	repetitionWindow = 60.0

	// segmentPadding keeps cuts off word boundaries.
	segmentPadding = 0.05

	minPhraseLen = 3
	maxPhraseLen = 10
)

// Segment is a kept span of source time.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Stats summarizes what the analysis removed.
type Stats struct {
	SilencesRemoved        int     `json:"silencesRemoved"`
	SilenceDurationRemoved float64 `json:"silenceDurationRemoved"`
	CutThatSignals         int     `json:"cutThatSignals"`
	IncompleteSentences    int     `json:"incompleteSentences"`
	Repetitions            int     `json:"repetitions"`
	OriginalDuration       float64 `json:"originalDuration"`
	FinalDuration          float64 `json:"finalDuration"`
	SegmentCount           int     `json:"segmentCount"`
}

type span struct{ start, end int } // inclusive word indices

type analyzer struct {
	words     []timeline.Word
	deletions []span
	logger    *slog.Logger
	stats     Stats
}

// Analyze runs the full pipeline over a word list and returns the kept
// segments in source order.
func Analyze(words []timeline.Word, logger *slog.Logger) ([]Segment, Stats) {
	a := &analyzer{words: words, logger: logger}
	if len(words) == 0 {
		return nil, a.stats
	}

	silences := a.detectSilences()
	a.processCutThatSignals()
	a.detectIncompleteSentences(silences)
	a.detectRepetitions()
	segments := a.buildSegments(silences)

	a.stats.OriginalDuration = words[len(words)-1].EndSec() - words[0].StartSec()
	for _, s := range segments {
		a.stats.FinalDuration += s.End - s.Start
	}
	a.stats.SegmentCount = len(segments)

	a.logger.Info("rough cut analysis complete",
		"words", len(words),
		"segments", len(segments),
		"silences_removed", a.stats.SilencesRemoved,
		"cut_that_signals", a.stats.CutThatSignals,
		"repetitions", a.stats.Repetitions,
	)
	return segments, a.stats
}

// detectSilences returns the word indices after which a gap longer than
// SilenceThreshold follows.
func (a *analyzer) detectSilences() map[int]bool {
	silences := map[int]bool{}
	for i := 0; i < len(a.words)-1; i++ {
		gap := a.words[i+1].StartSec() - a.words[i].EndSec()
		if gap > SilenceThreshold {
			silences[i] = true
			a.stats.SilencesRemoved++
			a.stats.SilenceDurationRemoved += gap
		}
	}
	return silences
}

// processCutThatSignals deletes from the end of the previous sentence
// through the "cut that" phrase itself.
func (a *analyzer) processCutThatSignals() {
	i := 0
	for i < len(a.words)-1 {
		if normalize(a.words[i].Text) == "cut" && normalize(a.words[i+1].Text) == "that" {
			sentenceEnd := a.lastSentenceEndBefore(i)
			a.deletions = append(a.deletions, span{start: sentenceEnd + 1, end: i + 1})
			a.stats.CutThatSignals++
			a.logger.Info("cut-that signal", "at", a.words[i].StartSec())
			i += 2
			continue
		}
		i++
	}
}

// detectIncompleteSentences drops thoughts abandoned into a long silence.
func (a *analyzer) detectIncompleteSentences(silences map[int]bool) {
	for i, w := range a.words {
		if endsSentence(w.Text) || !silences[i] {
			continue
		}
		start := a.sentenceStart(i)
		if a.rangeDeleted(start, i) {
			continue
		}
		a.deletions = append(a.deletions, span{start: start, end: i})
		a.stats.IncompleteSentences++
	}
}

// detectRepetitions finds verbatim n-gram retakes and deletes the earlier
// occurrence, keeping the last attempt.
func (a *analyzer) detectRepetitions() {
	for length := maxPhraseLen; length >= minPhraseLen; length-- {
		seen := map[string]int{}
		for i := 0; i+length <= len(a.words); i++ {
			if a.rangeDeleted(i, i+length-1) {
				continue
			}
			parts := make([]string, length)
			for j := 0; j < length; j++ {
				parts[j] = normalize(a.words[i+j].Text)
			}
			phrase := strings.Join(parts, " ")

			if earlier, ok := seen[phrase]; ok {
				if a.words[i].StartSec()-a.words[earlier].StartSec() < repetitionWindow {
					a.deletions = append(a.deletions, span{start: earlier, end: earlier + length - 1})
					a.stats.Repetitions++
				}
			}
			seen[phrase] = i
		}
	}
}

// buildSegments walks the kept words, splitting at deletions and long
// silences, padding each boundary by segmentPadding.
func (a *analyzer) buildSegments(silences map[int]bool) []Segment {
	deleted := map[int]bool{}
	for _, d := range a.deletions {
		for i := d.start; i <= d.end; i++ {
			deleted[i] = true
		}
	}

	var segments []Segment
	var current []timeline.Word
	flush := func() {
		if len(current) == 0 {
			return
		}
		start := current[0].StartSec() - segmentPadding
		if start < 0 {
			start = 0
		}
		texts := make([]string, len(current))
		for i, w := range current {
			texts[i] = w.Text
		}
		segments = append(segments, Segment{
			Start: start,
			End:   current[len(current)-1].EndSec() + segmentPadding,
			Text:  strings.Join(texts, " "),
		})
		current = nil
	}

	for i, w := range a.words {
		if deleted[i] || w.Deleted {
			flush()
			continue
		}
		current = append(current, w)
		if silences[i] {
			flush()
		}
	}
	flush()
	return segments
}

func (a *analyzer) lastSentenceEndBefore(idx int) int {
	for i := idx - 1; i >= 0; i-- {
		if endsSentence(a.words[i].Text) {
			return i
		}
	}
	if idx-10 > 0 {
		return idx - 10
	}
	return -1
}

func (a *analyzer) sentenceStart(idx int) int {
	for i := idx - 1; i >= 0; i-- {
		if endsSentence(a.words[i].Text) {
			return i + 1
		}
	}
	if idx-15 > 0 {
		return idx - 15
	}
	return 0
}

func (a *analyzer) rangeDeleted(start, end int) bool {
	for _, d := range a.deletions {
		if end >= d.start && start <= d.end {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), ".,!?"))
}

func endsSentence(s string) bool {
	t := strings.TrimRight(s, " ")
	return strings.HasSuffix(t, ".") || strings.HasSuffix(t, "!") || strings.HasSuffix(t, "?")
}

// BuildClips turns segments into a gapless clip sequence for the asset's
// track, laid out back to back from zero.
func BuildClips(asset *timeline.Asset, trackID string, segments []Segment) []*timeline.TimelineClip {
	clips := make([]*timeline.TimelineClip, 0, len(segments))
	offset := 0.0
	for i, seg := range segments {
		dur := seg.End - seg.Start
		if dur <= 0 {
			continue
		}
		clips = append(clips, &timeline.TimelineClip{
			ID:             timeline.NewID(),
			AssetID:        asset.ID,
			TrackID:        trackID,
			Name:           fmt.Sprintf("%s (cut %d)", asset.Name, i+1),
			SourceFileName: asset.Name,
			Start:          offset,
			End:            offset + dur,
			TrimStart:      seg.Start,
			TrimEnd:        seg.End,
			Opacity:        100,
			Volume:         100,
		})
		offset += dur
	}
	return clips
}
