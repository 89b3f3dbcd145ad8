package easel

import (
	"strings"
	"testing"
)

// newTestDoc returns a state and a history wired to it.
func newTestDoc(t *testing.T) (*State, *History) {
	t.Helper()
	s := NewState()
	return s, NewHistory(s.Capture, s.Restore)
}

func assertPointer(t *testing.T, h *History, branch, time int) {
	t.Helper()
	if p := h.Pointer(); p.Branch != branch || p.Time != time {
		t.Errorf("pointer = %+v, want {%d %d}", p, branch, time)
	}
}

func TestNewHistorySeedsInitialNode(t *testing.T) {
	_, h := newTestDoc(t)
	if h.NumBranches() != 1 || h.BranchLen(0) != 1 {
		t.Fatalf("grid = %d branches, branch 0 len %d", h.NumBranches(), h.BranchLen(0))
	}
	assertPointer(t, h, 0, 0)
	if action, _ := h.Action(0, 0); action != "initial" {
		t.Errorf("initial action = %q", action)
	}
}

func TestAddStateAppendsAtTip(t *testing.T) {
	s, h := newTestDoc(t)
	s.Create(1, 1, "box")
	if !h.AddState("create") {
		t.Fatal("AddState reported no-op for a real change")
	}
	if h.NumBranches() != 1 || h.BranchLen(0) != 2 {
		t.Errorf("grid = %d x %d", h.NumBranches(), h.BranchLen(0))
	}
	assertPointer(t, h, 0, 1)
}

func TestAddStateSuppressesNoOp(t *testing.T) {
	s, h := newTestDoc(t)
	s.Create(1, 1, "box")
	h.AddState("create")

	notifies := 0
	h.OnChange(func() { notifies++ })
	if h.AddState("create again") {
		t.Error("identical capture must be suppressed")
	}
	if h.BranchLen(0) != 2 {
		t.Errorf("branch len = %d, want 2", h.BranchLen(0))
	}
	if notifies != 0 {
		t.Errorf("no-op path notified %d listeners", notifies)
	}
}

func TestDivergenceCreatesBranchWithMatchingPrefix(t *testing.T) {
	s, h := newTestDoc(t)
	a := s.Create(10, 10, "box")
	h.AddState("create")
	s.MoveTo(a.ID, 20, 20)
	h.AddState("move")
	// Branch 0 now has 3 nodes. Undo once, then diverge.
	h.Undo()
	assertPointer(t, h, 0, 1)

	s.MoveTo(a.ID, 99, 99)
	if !h.AddState("diverge") {
		t.Fatal("divergent AddState failed")
	}

	if h.NumBranches() != 2 {
		t.Fatalf("branches = %d, want 2", h.NumBranches())
	}
	if h.BranchLen(0) != 3 {
		t.Errorf("branch 0 len = %d, want 3 (untouched)", h.BranchLen(0))
	}
	if h.BranchLen(1) != 3 {
		t.Errorf("branch 1 len = %d, want 3", h.BranchLen(1))
	}
	for i := 0; i < 2; i++ {
		if !h.grid[0][i].State.Equal(h.grid[1][i].State) {
			t.Errorf("prefix node %d differs between branches", i)
		}
		if h.grid[0][i].Action != h.grid[1][i].Action {
			t.Errorf("prefix action %d differs", i)
		}
	}
	if action, _ := h.Action(1, 2); action != "diverge" {
		t.Errorf("new tip action = %q", action)
	}
	assertPointer(t, h, 1, 2)
}

func TestBranchPrefixIsDeepCopied(t *testing.T) {
	s, h := newTestDoc(t)
	a := s.Create(10, 10, "box")
	h.AddState("create")
	s.MoveTo(a.ID, 20, 20)
	h.AddState("move")
	h.Undo()
	s.MoveTo(a.ID, 99, 99)
	h.AddState("diverge")

	// Mutating one branch's prefix storage must not reach the other.
	h.grid[1][1].State.Entities[0].Label = "tampered"
	if h.grid[0][1].State.Entities[0].Label == "tampered" {
		t.Error("branch prefix shares storage with fork source")
	}
}

func TestUndoRedoBounds(t *testing.T) {
	s, h := newTestDoc(t)
	if h.Undo() {
		t.Error("undo at time 0 must be a no-op")
	}
	assertPointer(t, h, 0, 0)

	s.Create(1, 1, "box")
	h.AddState("create")
	if h.Redo() {
		t.Error("redo at branch tip must be a no-op")
	}
	assertPointer(t, h, 0, 1)
}

func TestUndoRestoresPreviousSnapshot(t *testing.T) {
	s, h := newTestDoc(t)
	a := s.Create(10, 10, "box")
	h.AddState("create")
	s.MoveTo(a.ID, 50, 50)
	h.AddState("move")

	if !h.Undo() {
		t.Fatal("undo failed")
	}
	if got := s.Entity(a.ID).World(); got != (Vec2{10, 10}) {
		t.Errorf("after undo, world = %v, want {10 10}", got)
	}
	if !h.Redo() {
		t.Fatal("redo failed")
	}
	if got := s.Entity(a.ID).World(); got != (Vec2{50, 50}) {
		t.Errorf("after redo, world = %v, want {50 50}", got)
	}
}

func TestUndoRestoresDeletedSubtree(t *testing.T) {
	s, h := newTestDoc(t)
	root := s.Create(0, 0, "box")
	child := s.Create(10, 10, "box")
	s.Reparent(child.ID, root.ID)
	h.AddState("build")

	s.Delete(root.ID)
	h.AddState("delete")
	if s.NumEntities() != 0 {
		t.Fatalf("%d entities after delete", s.NumEntities())
	}

	h.Undo()
	if s.NumEntities() != 2 {
		t.Errorf("%d entities after undo, want 2", s.NumEntities())
	}
	if got := s.Entity(child.ID).World(); got != (Vec2{10, 10}) {
		t.Errorf("restored child world = %v", got)
	}
}

func TestJumpToStateAcrossBranches(t *testing.T) {
	s, h := newTestDoc(t)
	a := s.Create(10, 10, "box")
	h.AddState("create")
	s.MoveTo(a.ID, 20, 20)
	h.AddState("move")
	h.Undo()
	s.MoveTo(a.ID, 99, 99)
	h.AddState("diverge")

	// Jump back to branch 0's tip.
	if !h.JumpToState(0, 2) {
		t.Fatal("jump failed")
	}
	assertPointer(t, h, 0, 2)
	if got := s.Entity(a.ID).World(); got != (Vec2{20, 20}) {
		t.Errorf("after jump, world = %v, want {20 20}", got)
	}

	if h.JumpToState(5, 0) || h.JumpToState(0, 99) || h.JumpToState(-1, 0) {
		t.Error("jump to a nonexistent coordinate must fail")
	}
	assertPointer(t, h, 0, 2)
}

func TestCollapseArchivesAndCompacts(t *testing.T) {
	s, h := newTestDoc(t)
	a := s.Create(10, 10, "box")
	h.AddState("create")
	s.MoveTo(a.ID, 20, 20)
	h.AddState("move")
	h.Undo()
	s.MoveTo(a.ID, 99, 99)
	h.AddState("diverge")

	preGrid := make([]Branch, len(h.grid))
	for i, b := range h.grid {
		preGrid[i] = make(Branch, len(b))
		for j, n := range b {
			preGrid[i][j] = HistoryNode{Action: n.Action, State: n.State.Clone()}
		}
	}

	h.Collapse()

	if h.NumBranches() != 1 {
		t.Fatalf("branches = %d, want 1", h.NumBranches())
	}
	if h.BranchLen(0) != 3 {
		t.Errorf("compact branch len = %d, want 3", h.BranchLen(0))
	}
	assertPointer(t, h, 0, 2)
	if h.NumArchives() != 1 {
		t.Fatalf("archives = %d, want 1", h.NumArchives())
	}
	ts, msg, branches, ok := h.ArchiveInfo(0)
	if !ok || ts <= 0 || branches != 2 {
		t.Errorf("archive info = %d, %q, %d", ts, msg, branches)
	}
	if !strings.Contains(msg, "2") {
		t.Errorf("summary %q should mention the branch count", msg)
	}

	archived := h.archived[0].Grid
	if len(archived) != len(preGrid) {
		t.Fatalf("archived %d branches, want %d", len(archived), len(preGrid))
	}
	for i := range preGrid {
		if len(archived[i]) != len(preGrid[i]) {
			t.Fatalf("archived branch %d len %d, want %d", i, len(archived[i]), len(preGrid[i]))
		}
		for j := range preGrid[i] {
			if archived[i][j].Action != preGrid[i][j].Action ||
				!archived[i][j].State.Equal(preGrid[i][j].State) {
				t.Errorf("archived node (%d,%d) differs from pre-collapse grid", i, j)
			}
		}
	}
}

func TestCollapseMidBranchDropsFuture(t *testing.T) {
	s, h := newTestDoc(t)
	a := s.Create(10, 10, "box")
	h.AddState("create")
	s.MoveTo(a.ID, 20, 20)
	h.AddState("move")
	h.Undo() // pointer at (0,1)

	h.Collapse()
	if h.BranchLen(0) != 2 {
		t.Errorf("compact branch len = %d, want 2", h.BranchLen(0))
	}
	if h.CanRedo() {
		t.Error("collapsed future must not be redoable")
	}
}

func TestCollapseArchiveOwnsItsStorage(t *testing.T) {
	s, h := newTestDoc(t)
	a := s.Create(10, 10, "box")
	h.AddState("create")
	s.MoveTo(a.ID, 20, 20)
	h.AddState("move")
	h.Undo()
	s.MoveTo(a.ID, 99, 99)
	h.AddState("diverge")

	h.Collapse()

	// Tampering with the live grid must not reach the archived copy.
	h.grid[0][1].State.Entities[0].Label = "tampered"
	for i, b := range h.archived[0].Grid {
		for j, n := range b {
			for _, r := range n.State.Entities {
				if r.Label == "tampered" {
					t.Errorf("archived node (%d,%d) shares storage with the live grid", i, j)
				}
			}
		}
	}
}

func TestCollapseSummaryCountsBranches(t *testing.T) {
	s, h := newTestDoc(t)
	s.Create(10, 10, "box")
	h.AddState("create")

	h.Collapse()
	if _, msg, _, _ := h.ArchiveInfo(0); msg != "collapsed 1 branch" {
		t.Errorf("single-branch summary = %q", msg)
	}

	s.Create(20, 20, "box")
	h.AddState("second")
	h.Undo()
	s.Create(30, 30, "box")
	h.AddState("diverge")
	h.Collapse()
	if _, msg, _, _ := h.ArchiveInfo(1); msg != "collapsed 2 branches" {
		t.Errorf("two-branch summary = %q", msg)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s, h := newTestDoc(t)
	a := s.Create(10, 10, "box")
	h.AddState("create")
	s.MoveTo(a.ID, 20, 20)
	h.AddState("move")
	h.Undo()
	s.MoveTo(a.ID, 99, 99)
	h.AddState("diverge")
	h.Collapse()
	s.MoveTo(a.ID, 1, 1)
	h.AddState("after collapse")

	data, err := h.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	s2, h2 := newTestDoc(t)
	if err := h2.Decode(data); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if h2.NumBranches() != h.NumBranches() || h2.Pointer() != h.Pointer() {
		t.Errorf("grid shape: %d/%v vs %d/%v",
			h2.NumBranches(), h2.Pointer(), h.NumBranches(), h.Pointer())
	}
	if h2.NumArchives() != h.NumArchives() {
		t.Errorf("archives = %d, want %d", h2.NumArchives(), h.NumArchives())
	}
	for b := 0; b < h.NumBranches(); b++ {
		if h2.BranchLen(b) != h.BranchLen(b) {
			t.Fatalf("branch %d len mismatch", b)
		}
		for i := 0; i < h.BranchLen(b); i++ {
			if !h2.grid[b][i].State.Equal(h.grid[b][i].State) {
				t.Errorf("node (%d,%d) state differs after round trip", b, i)
			}
		}
	}
	// Live entities must equal those implied by the restored pointer.
	if !s2.Capture().Equal(s.Capture()) {
		t.Error("restored live state differs from source")
	}
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	s, h := newTestDoc(t)
	s.Create(5, 5, "box")
	h.AddState("create")
	before := s.Capture()

	payloads := []string{
		`not json`,
		`{"grid": [], "pointer": {"branch": 0, "time": 0}}`,
		`{"grid": [[]], "pointer": {"branch": 0, "time": 0}}`,
		`{"grid": [[{"action":"initial","state":{"entities":[],"selectedIds":[],"idCounter":0}}]], "pointer": {"branch": 1, "time": 0}}`,
		`{"grid": [[{"action":"initial","state":{"entities":[],"selectedIds":[],"idCounter":0}}]], "pointer": {"branch": 0, "time": 5}}`,
		`{"grid": [[{"action":"initial","state":{"entities":[],"selectedIds":[],"idCounter":0}}]], "pointer": {"branch": -1, "time": 0}}`,
	}
	for _, p := range payloads {
		err := h.Decode([]byte(p))
		if err == nil {
			t.Errorf("payload accepted: %s", p)
			continue
		}
		if !strings.Contains(err.Error(), "malformed") {
			t.Errorf("error %v should wrap ErrMalformedPayload", err)
		}
	}
	// Live history and state untouched after every rejection.
	if h.BranchLen(0) != 2 {
		t.Errorf("branch len = %d after rejected loads", h.BranchLen(0))
	}
	if !s.Capture().Equal(before) {
		t.Error("rejected load mutated live state")
	}
}

func TestDecodeRejectsCyclicForest(t *testing.T) {
	s, h := newTestDoc(t)
	s.Create(5, 5, "box")
	h.AddState("create")
	before := s.Capture()

	payloads := []string{
		// Parent links form a cycle.
		`{"grid": [[{"action":"initial","state":{"entities":[
			{"id":"b","localTransform":{"x":0,"y":0},"worldTransform":{"x":0,"y":0},"size":{"width":1,"height":1},"parentId":"c"},
			{"id":"c","localTransform":{"x":0,"y":0},"worldTransform":{"x":0,"y":0},"size":{"width":1,"height":1},"parentId":"b"}
		],"selectedIds":[],"idCounter":2}}]], "pointer": {"branch": 0, "time": 0}}`,
		// Children lists form a cycle two entities deep.
		`{"grid": [[{"action":"initial","state":{"entities":[
			{"id":"b","localTransform":{"x":0,"y":0},"worldTransform":{"x":0,"y":0},"size":{"width":1,"height":1},"children":["c"]},
			{"id":"c","localTransform":{"x":0,"y":0},"worldTransform":{"x":0,"y":0},"size":{"width":1,"height":1},"children":["b"]}
		],"selectedIds":[],"idCounter":2}}]], "pointer": {"branch": 0, "time": 0}}`,
		// One entity owned by two children lists.
		`{"grid": [[{"action":"initial","state":{"entities":[
			{"id":"a","localTransform":{"x":0,"y":0},"worldTransform":{"x":0,"y":0},"size":{"width":1,"height":1},"children":["b"]},
			{"id":"b","localTransform":{"x":0,"y":0},"worldTransform":{"x":0,"y":0},"size":{"width":1,"height":1},"children":["c"]},
			{"id":"c","localTransform":{"x":0,"y":0},"worldTransform":{"x":0,"y":0},"size":{"width":1,"height":1},"children":["b"]}
		],"selectedIds":[],"idCounter":3}}]], "pointer": {"branch": 0, "time": 0}}`,
		// Duplicate entity id.
		`{"grid": [[{"action":"initial","state":{"entities":[
			{"id":"a","localTransform":{"x":0,"y":0},"worldTransform":{"x":0,"y":0},"size":{"width":1,"height":1}},
			{"id":"a","localTransform":{"x":9,"y":9},"worldTransform":{"x":9,"y":9},"size":{"width":1,"height":1}}
		],"selectedIds":[],"idCounter":1}}]], "pointer": {"branch": 0, "time": 0}}`,
	}
	for _, p := range payloads {
		err := h.Decode([]byte(p))
		if err == nil {
			t.Errorf("cyclic payload accepted: %s", p)
			continue
		}
		if !strings.Contains(err.Error(), "malformed") {
			t.Errorf("error %v should wrap ErrMalformedPayload", err)
		}
	}
	if !s.Capture().Equal(before) {
		t.Error("rejected load mutated live state")
	}
}

func TestDecodeFiresListeners(t *testing.T) {
	s, h := newTestDoc(t)
	s.Create(5, 5, "box")
	h.AddState("create")
	data, _ := h.Encode()

	s2, h2 := newTestDoc(t)
	historyNotified, stateNotified := 0, 0
	h2.OnChange(func() { historyNotified++ })
	s2.OnChange(func() { stateNotified++ })

	if err := h2.Decode(data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if historyNotified == 0 || stateNotified == 0 {
		t.Errorf("listeners not re-fired: history=%d state=%d", historyNotified, stateNotified)
	}
}

func TestHistoryNeverAliasesLiveState(t *testing.T) {
	s, h := newTestDoc(t)
	a := s.Create(10, 10, "box")
	b := s.Create(0, 0, "box")
	s.Reparent(b.ID, a.ID)
	h.AddState("build")

	// Mutate live state heavily; the stored node must be unaffected.
	s.MoveTo(a.ID, 500, 500)
	s.Entity(a.ID).Children[0] = "tampered"

	stored := h.grid[0][1].State
	for _, r := range stored.Entities {
		if r.ID == a.ID {
			if r.Local != (Vec2{10, 10}) {
				t.Errorf("stored local = %v", r.Local)
			}
			if len(r.Children) != 1 || r.Children[0] != b.ID {
				t.Errorf("stored children = %v", r.Children)
			}
		}
	}
}

func TestUndoDoesNotAliasStoredSnapshot(t *testing.T) {
	s, h := newTestDoc(t)
	a := s.Create(10, 10, "box")
	h.AddState("create")
	s.MoveTo(a.ID, 50, 50)
	h.AddState("move")

	h.Undo()
	// Mutate the restored live state; the stored node must stay frozen.
	s.MoveTo(a.ID, 777, 777)
	stored := h.grid[0][1].State
	if stored.Entities[0].Local != (Vec2{10, 10}) {
		t.Errorf("stored node mutated by live edit: %v", stored.Entities[0].Local)
	}
}
