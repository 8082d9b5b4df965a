package timeline

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func TestHistory_UndoRedoExactness(t *testing.T) {
	e := NewEditor(testLibrary())
	var h History

	st := stateWith(clip("c1", "asset-1", "track-1", 0, 0, 15))
	initial := st.Clone()

	var states []*TimelineState
	apply := func(next *TimelineState, ok bool) {
		if !ok {
			t.Fatal("operation unexpectedly no-opped")
		}
		h.Push(st)
		states = append(states, st.Clone())
		st = next
	}

	apply(e.SplitClip(st, "c1", 5))
	apply(e.DeleteClips(st, []string{"c1-1"}))
	apply(e.MoveClip(st, "c1-2", "track-2", 3))
	final := st.Clone()

	for i := len(states) - 1; i >= 0; i-- {
		var ok bool
		st, ok = h.Undo(st)
		if !ok {
			t.Fatalf("undo %d failed", i)
		}
		if !reflect.DeepEqual(st, states[i]) {
			t.Fatalf("undo %d: state mismatch", i)
		}
	}
	if !reflect.DeepEqual(st, initial) {
		t.Fatal("full undo did not restore the initial state")
	}
	if _, ok := h.Undo(st); ok {
		t.Fatal("undo past the beginning should no-op")
	}

	for range states {
		var ok bool
		st, ok = h.Redo(st)
		if !ok {
			t.Fatal("redo failed")
		}
	}
	if !reflect.DeepEqual(st, final) {
		t.Fatal("full redo did not restore the final state")
	}
	if _, ok := h.Redo(st); ok {
		t.Fatal("redo past the end should no-op")
	}
}

func TestHistory_PushClearsRedo(t *testing.T) {
	var h History
	a := stateWith(clip("c1", "asset-1", "track-1", 0, 0, 5))
	b := stateWith(clip("c2", "asset-1", "track-1", 0, 0, 3))

	h.Push(a)
	cur, _ := h.Undo(b)
	if !h.CanRedo() {
		t.Fatal("expected a redo branch after undo")
	}

	h.Push(cur)
	if h.CanRedo() {
		t.Fatal("new edit must clear the redo branch")
	}
}

func TestHistory_CapsAtLimit(t *testing.T) {
	var h History
	for i := 0; i < HistoryLimit+20; i++ {
		h.Push(NewState())
	}
	if h.Depth() != HistoryLimit {
		t.Fatalf("depth = %d, want %d", h.Depth(), HistoryLimit)
	}
}

func TestHistory_SnapshotsAreIndependent(t *testing.T) {
	var h History
	st := stateWith(clip("c1", "asset-1", "track-1", 0, 0, 5))
	h.Push(st)

	// Mutating the live state must not reach into the snapshot.
	st.Tracks[0].Clips[0].Start = 99

	restored, ok := h.Undo(st)
	if !ok {
		t.Fatal("undo failed")
	}
	if restored.Tracks[0].Clips[0].Start != 0 {
		t.Fatalf("snapshot shares memory with live state: start = %v", restored.Tracks[0].Clips[0].Start)
	}
}

// Undo exactness over arbitrary operation sequences: N edits, N undos,
// deep-equal initial state; N redos, deep-equal final state.
func TestHistory_RandomOpSequence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := NewEditor(testLibrary())
		e.Magnetic = rapid.Bool().Draw(rt, "magnetic")
		var h History

		st := stateWith(
			clip("c1", "asset-1", "track-1", 0, 0, 6),
			clip("c2", "asset-1", "track-1", 6, 6, 12),
			clip("c3", "asset-2", "track-3", 0, 0, 20),
		)
		initial := st.Clone()

		numOps := rapid.IntRange(1, 8).Draw(rt, "num_ops")
		var snapshots []*TimelineState
		for i := 0; i < numOps; i++ {
			ids := AllClipIDs(st)
			if len(ids) == 0 {
				break
			}
			id := ids[rapid.IntRange(0, len(ids)-1).Draw(rt, "clip_idx")]

			var next *TimelineState
			var ok bool
			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				next, ok = e.SplitClip(st, id, rapid.Float64Range(0, 20).Draw(rt, "pos"))
			case 1:
				next, ok = e.MoveClips(st, []string{id}, rapid.Float64Range(-5, 5).Draw(rt, "delta"))
			case 2:
				next, ok = e.DeleteClips(st, []string{id})
			case 3:
				next, ok = e.RippleDelete(st, []string{id})
			case 4:
				next, ok = e.NudgeClips(st, []string{id}, DirRight, rapid.Float64Range(0.2, 2).Draw(rt, "amt"))
			}
			if !ok {
				continue
			}
			h.Push(st)
			snapshots = append(snapshots, st.Clone())
			st = next
		}
		final := st.Clone()

		for i := len(snapshots) - 1; i >= 0; i-- {
			var ok bool
			st, ok = h.Undo(st)
			if !ok {
				rt.Fatalf("undo %d failed", i)
			}
		}
		if !reflect.DeepEqual(st, initial) {
			rt.Fatalf("undo chain did not restore initial state")
		}
		for range snapshots {
			var ok bool
			st, ok = h.Redo(st)
			if !ok {
				rt.Fatal("redo failed")
			}
		}
		if !reflect.DeepEqual(st, final) {
			rt.Fatalf("redo chain did not restore final state")
		}
	})
}
