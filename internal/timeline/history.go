package timeline

// HistoryLimit caps how many undo snapshots are kept; the oldest are
// discarded first.
const HistoryLimit = 50

// History is snapshot-based undo/redo over whole timeline states. Push is
// called with the pre-mutation state before each successful edit; a new
// edit always clears the redo branch.
type History struct {
	past   []*TimelineState
	future []*TimelineState
}

// Push appends the pre-mutation state to the undo stack and clears redo.
func (h *History) Push(st *TimelineState) {
	h.past = append(h.past, st.Clone())
	if len(h.past) > HistoryLimit {
		h.past = h.past[len(h.past)-HistoryLimit:]
	}
	h.future = nil
}

// Undo swaps the current state for the most recent snapshot. Returns the
// input unchanged when there is nothing to undo.
func (h *History) Undo(current *TimelineState) (*TimelineState, bool) {
	if len(h.past) == 0 {
		return current, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append([]*TimelineState{current.Clone()}, h.future...)
	return prev, true
}

// Redo is the inverse of Undo.
func (h *History) Redo(current *TimelineState) (*TimelineState, bool) {
	if len(h.future) == 0 {
		return current, false
	}
	nxt := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, current.Clone())
	return nxt, true
}

func (h *History) CanUndo() bool { return len(h.past) > 0 }
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Depth returns how many undo steps are available.
func (h *History) Depth() int { return len(h.past) }
