package export

import "github.com/cutroom/cutroom-engine/internal/timeline"

// PayloadAsset is the slimmed asset record the render and XML backends
// need: enough to locate media, nothing else.
type PayloadAsset struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
	Src      string  `json:"src"`
}

// Payload is the JSON document handed to external serialization backends.
type Payload struct {
	Timeline *timeline.TimelineState `json:"timeline"`
	Assets   []PayloadAsset          `json:"assets"`
}

// BuildPayload pairs the timeline with the assets it references. Only
// assets actually placed on a track are included; the src falls back to
// the remote path when no local blob exists.
func BuildPayload(st *timeline.TimelineState, lib *timeline.Library) *Payload {
	used := map[string]bool{}
	for _, t := range st.Tracks {
		for _, c := range t.Clips {
			used[c.AssetID] = true
		}
	}

	payload := &Payload{Timeline: st}
	for _, a := range lib.Assets() {
		if !used[a.ID] {
			continue
		}
		src := a.Src
		if src == "" {
			src = a.RemoteSrc
		}
		payload.Assets = append(payload.Assets, PayloadAsset{
			ID:       a.ID,
			Name:     a.Name,
			Duration: a.Duration,
			Src:      src,
		})
	}
	return payload
}
