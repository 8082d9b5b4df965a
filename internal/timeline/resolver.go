package timeline

import (
	"path/filepath"
	"strings"
)

// Match ranks how a clip reference was resolved to an asset.
type Match int

const (
	MatchNone Match = iota
	MatchExactID
	MatchSourceFilename
	MatchName
)

func (m Match) String() string {
	switch m {
	case MatchExactID:
		return "exact_id"
	case MatchSourceFilename:
		return "source_filename"
	case MatchName:
		return "name"
	default:
		return "unresolved"
	}
}

// Library holds the assets of one project and resolves clip references.
// An unresolved clip is not an error: the client renders it offline.
type Library struct {
	assets []*Asset
}

func NewLibrary(assets ...*Asset) *Library {
	l := &Library{}
	for _, a := range assets {
		l.Add(a)
	}
	return l
}

// Add registers an asset, replacing any previous asset with the same id.
func (l *Library) Add(a *Asset) {
	for i, existing := range l.assets {
		if existing.ID == a.ID {
			l.assets[i] = a
			return
		}
	}
	l.assets = append(l.assets, a)
}

func (l *Library) Remove(id string) {
	for i, a := range l.assets {
		if a.ID == id {
			l.assets = append(l.assets[:i], l.assets[i+1:]...)
			return
		}
	}
}

func (l *Library) Get(id string) *Asset {
	for _, a := range l.assets {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (l *Library) Assets() []*Asset {
	return l.assets
}

// Resolve maps a clip to its asset: exact id first, then fuzzy filename
// matching against sourceFileName, then against the clip name. First match
// wins. A nil result means the clip is offline.
func (l *Library) Resolve(clip *TimelineClip) (*Asset, Match) {
	for _, a := range l.assets {
		if a.ID == clip.AssetID {
			return a, MatchExactID
		}
	}

	if clip.SourceFileName != "" {
		want := cleanName(clip.SourceFileName)
		for _, a := range l.assets {
			if cleanName(a.Name) == want {
				return a, MatchSourceFilename
			}
		}
	}

	if clip.Name != "" {
		want := cleanName(clip.Name)
		for _, a := range l.assets {
			if cleanName(a.Name) == want {
				return a, MatchName
			}
		}
	}

	return nil, MatchNone
}

// SetTranscription attaches a word list to an asset.
func (l *Library) SetTranscription(assetID string, t *Transcription) bool {
	a := l.Get(assetID)
	if a == nil {
		return false
	}
	a.Transcription = t
	return true
}

// MarkWords flags every word overlapping [startMs, endMs) as deleted (or
// restored). Word flags live on the asset, outside undo state.
func (l *Library) MarkWords(assetID string, startMs, endMs int, deleted bool) int {
	a := l.Get(assetID)
	if a == nil || a.Transcription == nil {
		return 0
	}
	n := 0
	for i := range a.Transcription.Words {
		w := &a.Transcription.Words[i]
		if w.StartMs < endMs && w.EndMs > startMs {
			w.Deleted = deleted
			n++
		}
	}
	return n
}

// cleanName case-folds and strips the extension so "Interview_RAW.MP4"
// matches "interview_raw.mov".
func cleanName(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	return strings.ToLower(strings.TrimSuffix(base, ext))
}
