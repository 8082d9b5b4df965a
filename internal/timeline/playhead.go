package timeline

import "time"

// Playhead is the passive playback clock. It only reads timeline state:
// each Tick advances the position by the wall-time delta since the last
// one and wraps to zero past the end. It never mutates clips, so it can
// share the event loop with editing operations without coordination.
type Playhead struct {
	Position float64
	playing  bool
	lastTick time.Time
}

func (p *Playhead) Play(now time.Time) {
	p.playing = true
	p.lastTick = now
}

func (p *Playhead) Pause() {
	p.playing = false
}

func (p *Playhead) Playing() bool { return p.playing }

func (p *Playhead) Seek(position float64) {
	if position < 0 {
		position = 0
	}
	p.Position = position
}

// Tick advances the playhead and returns the new position. total is the
// current timeline duration; a zero-length timeline pins the playhead at
// zero.
func (p *Playhead) Tick(now time.Time, total float64) float64 {
	if !p.playing {
		return p.Position
	}
	delta := now.Sub(p.lastTick).Seconds()
	p.lastTick = now
	if delta < 0 {
		return p.Position
	}
	if total <= 0 {
		p.Position = 0
		return 0
	}
	p.Position += delta
	if p.Position > total {
		p.Position = 0
	}
	return p.Position
}
