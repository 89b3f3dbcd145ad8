package easel

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedPayload is returned by Decode when a persisted history
// payload is structurally invalid. The live history is left untouched.
var ErrMalformedPayload = errors.New("easel: malformed history payload")

// HistoryNode is one checkpoint: a user-facing action label and the full
// snapshot taken after that action.
type HistoryNode struct {
	Action string   `json:"action"`
	State  Snapshot `json:"state"`
}

// Branch is one linear timeline. A branch forked from another shares its
// first nodes with the fork source by value, never by mutable storage.
type Branch []HistoryNode

// Pointer is the (branch, time) coordinate of the active history node.
type Pointer struct {
	Branch int `json:"branch"`
	Time   int `json:"time"`
}

// Archive is a collapsed grid, preserved verbatim. Append-only, never
// mutated after archival.
type Archive struct {
	Timestamp int64    `json:"timestamp"`
	Grid      []Branch `json:"grid"`
	Message   string   `json:"message"`
}

// History is a branching grid of snapshots with a 2D cursor. It owns no
// application state: capture and restore, supplied at construction, are
// the sole boundary crossing into the state owner.
type History struct {
	grid     []Branch
	pointer  Pointer
	archived []Archive

	capture func() Snapshot
	restore func(Snapshot)

	listeners []func()
}

// NewHistory creates a history seeded with one immutable initial snapshot
// at branch 0, node 0.
func NewHistory(capture func() Snapshot, restore func(Snapshot)) *History {
	return &History{
		grid:    []Branch{{HistoryNode{Action: "initial", State: capture()}}},
		capture: capture,
		restore: restore,
	}
}

// OnChange registers a listener invoked after any structural history
// change or pointer move. Invocation order is registration order.
func (h *History) OnChange(fn func()) {
	h.listeners = append(h.listeners, fn)
}

func (h *History) notify() {
	for _, fn := range h.listeners {
		fn()
	}
}

// --- Read access ---

// Pointer returns the current (branch, time) coordinate.
func (h *History) Pointer() Pointer {
	return h.pointer
}

// NumBranches returns the number of branches in the grid.
func (h *History) NumBranches() int {
	return len(h.grid)
}

// BranchLen returns the length of branch b, or 0 if b is out of range.
func (h *History) BranchLen(b int) int {
	if b < 0 || b >= len(h.grid) {
		return 0
	}
	return len(h.grid[b])
}

// Action returns the action label at (b, t).
func (h *History) Action(b, t int) (string, bool) {
	if b < 0 || b >= len(h.grid) || t < 0 || t >= len(h.grid[b]) {
		return "", false
	}
	return h.grid[b][t].Action, true
}

// CanUndo reports whether Undo would move the pointer.
func (h *History) CanUndo() bool {
	return h.pointer.Time > 0
}

// CanRedo reports whether Redo would move the pointer.
func (h *History) CanRedo() bool {
	return h.pointer.Time < len(h.grid[h.pointer.Branch])-1
}

// NumArchives returns the number of archived grids.
func (h *History) NumArchives() int {
	return len(h.archived)
}

// ArchiveInfo returns the timestamp (unix milliseconds), summary message,
// and branch count of archive i.
func (h *History) ArchiveInfo(i int) (timestamp int64, message string, branches int, ok bool) {
	if i < 0 || i >= len(h.archived) {
		return 0, "", 0, false
	}
	a := h.archived[i]
	return a.Timestamp, a.Message, len(a.Grid), true
}

// --- Navigation ---

// AddState captures the current state under the given action label.
//
// If the capture equals the node under the pointer this is a no-op: no
// node is appended and no listener fires. At the tip of the active branch
// the node is appended in place. Anywhere else the user is diverging after
// an undo: the active branch's prefix up to and including the pointer is
// deep-copied into a new branch, the node is appended there, and the
// pointer moves to the new branch's tip. The original branch beyond the
// fork point stays navigable.
func (h *History) AddState(action string) bool {
	snap := h.capture()
	if snap.Equal(h.grid[h.pointer.Branch][h.pointer.Time].State) {
		return false
	}

	branch := h.grid[h.pointer.Branch]
	if h.pointer.Time == len(branch)-1 {
		h.grid[h.pointer.Branch] = append(branch, HistoryNode{Action: action, State: snap})
		h.pointer.Time++
	} else {
		fork := make(Branch, 0, h.pointer.Time+2)
		for _, n := range branch[:h.pointer.Time+1] {
			fork = append(fork, HistoryNode{Action: n.Action, State: n.State.Clone()})
		}
		fork = append(fork, HistoryNode{Action: action, State: snap})
		h.grid = append(h.grid, fork)
		h.pointer = Pointer{Branch: len(h.grid) - 1, Time: len(fork) - 1}
	}
	h.notify()
	return true
}

// Undo steps the pointer back one node along the active branch and
// restores that snapshot. No-op at time 0.
func (h *History) Undo() bool {
	if h.pointer.Time == 0 {
		return false
	}
	h.pointer.Time--
	h.restore(h.grid[h.pointer.Branch][h.pointer.Time].State)
	h.notify()
	return true
}

// Redo steps the pointer forward one node along the active branch and
// restores that snapshot. No-op at the branch tip.
func (h *History) Redo() bool {
	if h.pointer.Time >= len(h.grid[h.pointer.Branch])-1 {
		return false
	}
	h.pointer.Time++
	h.restore(h.grid[h.pointer.Branch][h.pointer.Time].State)
	h.notify()
	return true
}

// JumpToState moves the pointer to an arbitrary existing (branch, time)
// coordinate, across branches, and restores that snapshot.
func (h *History) JumpToState(branch, t int) bool {
	if branch < 0 || branch >= len(h.grid) || t < 0 || t >= len(h.grid[branch]) {
		return false
	}
	h.pointer = Pointer{Branch: branch, Time: t}
	h.restore(h.grid[branch][t].State)
	h.notify()
	return true
}

// Collapse archives the entire current grid and replaces it with a single
// branch: the active branch's prefix up to and including the pointer. The
// pointer resets to the tip of that branch. Branches other than the one
// being viewed are afterwards only recoverable via the archive.
func (h *History) Collapse() {
	msg := fmt.Sprintf("collapsed %d branches", len(h.grid))
	if len(h.grid) == 1 {
		msg = "collapsed 1 branch"
	}
	archived := Archive{
		Timestamp: time.Now().UnixMilli(),
		Grid:      cloneGrid(h.grid),
		Message:   msg,
	}

	active := h.grid[h.pointer.Branch]
	compact := make(Branch, 0, h.pointer.Time+1)
	for _, n := range active[:h.pointer.Time+1] {
		compact = append(compact, HistoryNode{Action: n.Action, State: n.State.Clone()})
	}

	h.archived = append(h.archived, archived)
	h.grid = []Branch{compact}
	h.pointer = Pointer{Branch: 0, Time: len(compact) - 1}
	h.notify()
}

// cloneGrid deep-copies every branch and snapshot so the archive owns its
// storage outright, independent of later edits to the live grid.
func cloneGrid(grid []Branch) []Branch {
	out := make([]Branch, len(grid))
	for i, b := range grid {
		branch := make(Branch, len(b))
		for j, n := range b {
			branch[j] = HistoryNode{Action: n.Action, State: n.State.Clone()}
		}
		out[i] = branch
	}
	return out
}

// --- Persistence ---

// historyPayload is the persisted wire shape.
type historyPayload struct {
	Grid            []Branch  `json:"grid"`
	Pointer         Pointer   `json:"pointer"`
	ArchivedHistory []Archive `json:"archivedHistory"`
}

// Encode serializes the full grid, pointer, and archive list to a single
// JSON payload.
func (h *History) Encode() ([]byte, error) {
	return json.Marshal(historyPayload{
		Grid:            h.grid,
		Pointer:         h.pointer,
		ArchivedHistory: h.archived,
	})
}

// Decode replaces the history from a payload produced by Encode, restores
// the snapshot at the loaded pointer, and re-fires all listeners. A
// malformed payload is rejected with ErrMalformedPayload and the live
// history and state are left untouched.
func (h *History) Decode(data []byte) error {
	var p historyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := validatePayload(p); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	h.grid = p.Grid
	h.pointer = p.Pointer
	h.archived = p.ArchivedHistory
	h.restore(h.grid[h.pointer.Branch][h.pointer.Time].State)
	h.notify()
	return nil
}

func validatePayload(p historyPayload) error {
	if len(p.Grid) == 0 {
		return errors.New("empty grid")
	}
	for i, b := range p.Grid {
		if len(b) == 0 {
			return fmt.Errorf("branch %d is empty", i)
		}
		for j, n := range b {
			if err := n.State.validateForest(); err != nil {
				return fmt.Errorf("branch %d node %d: %v", i, j, err)
			}
		}
	}
	if p.Pointer.Branch < 0 || p.Pointer.Branch >= len(p.Grid) {
		return fmt.Errorf("pointer branch %d out of range", p.Pointer.Branch)
	}
	if p.Pointer.Time < 0 || p.Pointer.Time >= len(p.Grid[p.Pointer.Branch]) {
		return fmt.Errorf("pointer time %d out of range", p.Pointer.Time)
	}
	for i, a := range p.ArchivedHistory {
		for j, b := range a.Grid {
			if len(b) == 0 {
				return fmt.Errorf("archive %d branch %d is empty", i, j)
			}
		}
	}
	return nil
}
