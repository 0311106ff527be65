package painter

// Snapshot is one named undo entry: the binary split history of every
// volume, in volume order.
type Snapshot struct {
	Name    string
	Volumes [][]byte
}

// History is a linear undo stack. Taking a snapshot after an undo drops
// the redo tail.
type History struct {
	snaps []Snapshot
	cur   int
}

func NewHistory() *History {
	return &History{cur: -1}
}

// Push appends s after the current entry and makes it current.
func (h *History) Push(s Snapshot) {
	h.snaps = append(h.snaps[:h.cur+1], s)
	h.cur = len(h.snaps) - 1
}

// Undo steps back and returns the entry to restore.
func (h *History) Undo() (Snapshot, bool) {
	if h.cur <= 0 {
		return Snapshot{}, false
	}
	h.cur--
	return h.snaps[h.cur], true
}

// Redo steps forward and returns the entry to restore.
func (h *History) Redo() (Snapshot, bool) {
	if h.cur+1 >= len(h.snaps) {
		return Snapshot{}, false
	}
	h.cur++
	return h.snaps[h.cur], true
}

// Current returns the current entry.
func (h *History) Current() (Snapshot, bool) {
	if h.cur < 0 {
		return Snapshot{}, false
	}
	return h.snaps[h.cur], true
}

// Names lists entry names oldest first.
func (h *History) Names() []string {
	out := make([]string, len(h.snaps))
	for i, s := range h.snaps {
		out[i] = s.Name
	}
	return out
}

func (h *History) Len() int { return len(h.snaps) }

// CanUndo and CanRedo report whether Undo or Redo would move.
func (h *History) CanUndo() bool { return h.cur > 0 }
func (h *History) CanRedo() bool { return h.cur+1 < len(h.snaps) }
