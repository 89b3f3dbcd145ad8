package easel

import (
	"fmt"
	"sort"
)

// State owns the entity forest, the selection set, and the id generator.
// It exposes every mutating operation the external view/controller drives
// and is the thing the history engine snapshots. All transform math is
// delegated to the graph functions; State keeps the cached world
// transforms fresh by propagating after every structural mutation.
//
// State is single-threaded by contract: every operation runs to completion
// before the next begins.
type State struct {
	entities  map[string]*Entity
	selected  map[string]struct{}
	idCounter int

	changeListeners    []func()
	selectionListeners []func()
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		entities: make(map[string]*Entity),
		selected: make(map[string]struct{}),
	}
}

// --- Listeners ---

// OnChange registers a listener invoked after any structural change.
// Listeners receive no payload and are expected to re-read current state.
// Invocation order is registration order.
func (s *State) OnChange(fn func()) {
	s.changeListeners = append(s.changeListeners, fn)
}

// OnSelectionChange registers a listener invoked after selection-only
// changes.
func (s *State) OnSelectionChange(fn func()) {
	s.selectionListeners = append(s.selectionListeners, fn)
}

func (s *State) notifyChange() {
	for _, fn := range s.changeListeners {
		fn()
	}
}

func (s *State) notifySelection() {
	for _, fn := range s.selectionListeners {
		fn()
	}
}

// --- Read access ---

// Entity returns the live entity for id, or nil if it does not resolve.
// The returned entity MUST NOT be mutated by the caller; use the mutator
// operations so world transforms and notifications stay consistent.
func (s *State) Entity(id string) *Entity {
	return s.entities[id]
}

// NumEntities returns the number of live entities.
func (s *State) NumEntities() int {
	return len(s.entities)
}

// EntityIDs returns all live entity ids, sorted.
func (s *State) EntityIDs() []string {
	ids := make([]string, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Each calls fn for every live entity in sorted id order.
func (s *State) Each(fn func(*Entity)) {
	for _, id := range s.EntityIDs() {
		fn(s.entities[id])
	}
}

// Roots returns the ids of all root entities (no parent, or a parent id
// that does not resolve), sorted.
func (s *State) Roots() []string {
	var roots []string
	for id, e := range s.entities {
		if _, ok := s.entities[e.ParentID]; e.ParentID == "" || !ok {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// --- Mutators ---

// Create mints a fresh root entity at world (x, y) and replaces the
// selection with it. Never fails; ids are never reused.
func (s *State) Create(x, y float64, kind string) *Entity {
	s.idCounter++
	id := fmt.Sprintf("obj-%d", s.idCounter)
	e := newEntity(id, x, y, kind)
	s.entities[id] = e
	s.setSelectionSet(map[string]struct{}{id: {}})
	s.notifyChange()
	s.notifySelection()
	return e
}

// Delete removes an entity and all its descendants, detaching it from its
// parent and dropping every removed id from the selection. Returns false
// if id does not resolve.
func (s *State) Delete(id string) bool {
	e, ok := s.entities[id]
	if !ok {
		return false
	}
	if parent, ok := s.entities[e.ParentID]; ok {
		parent.removeChild(id)
	}
	selectionTouched := s.deleteSubtree(id, make(map[string]bool, 8))
	propagateTransforms(s.entities)
	s.notifyChange()
	if selectionTouched {
		s.notifySelection()
	}
	return true
}

// deleteSubtree removes id and its descendants, descendants first.
// Reports whether the selection set was modified. The visited map is the
// same guard propagateFrom carries: a children cycle smuggled in through a
// hand-edited payload must not recurse forever.
func (s *State) deleteSubtree(id string, visited map[string]bool) bool {
	e, ok := s.entities[id]
	if !ok || visited[id] {
		return false
	}
	visited[id] = true
	touched := false
	for _, childID := range e.Children {
		if s.deleteSubtree(childID, visited) {
			touched = true
		}
	}
	delete(s.entities, id)
	if _, sel := s.selected[id]; sel {
		delete(s.selected, id)
		touched = true
	}
	return touched
}

// DeleteMany applies Delete to each id and returns the count actually
// removed. Never fails; absent ids are skipped. An id already removed as a
// descendant of an earlier id does not count twice.
func (s *State) DeleteMany(ids []string) int {
	removed := 0
	for _, id := range ids {
		if s.Delete(id) {
			removed++
		}
	}
	return removed
}

// MoveTo moves an entity to world position (x, y). Returns false if the
// entity is missing or anchored.
func (s *State) MoveTo(id string, x, y float64) bool {
	if !moveEntityTo(id, x, y, s.entities) {
		return false
	}
	s.notifyChange()
	return true
}

// Reparent moves child under parentID, preserving the child's world
// position. An empty parentID makes the child a root. Returns false if the
// child is missing, a non-empty parentID does not resolve, or the move
// would create a cycle.
func (s *State) Reparent(childID, parentID string) bool {
	if !reparentEntity(childID, parentID, s.entities) {
		return false
	}
	s.notifyChange()
	return true
}

// SetRenderMode sets one axis of an entity's render-mode hint. Purely a
// presentation hint: no transform recompute. Returns false if the entity
// is missing or the mode is unknown.
func (s *State) SetRenderMode(id string, axis Axis, mode PositionMode) bool {
	e, ok := s.entities[id]
	if !ok || !mode.valid() {
		return false
	}
	switch axis {
	case AxisHorizontal:
		e.Mode.Horizontal = mode
	case AxisVertical:
		e.Mode.Vertical = mode
	default:
		return false
	}
	s.notifyChange()
	return true
}

// SetLabel sets an entity's label. Returns false if the entity is missing.
func (s *State) SetLabel(id, label string) bool {
	e, ok := s.entities[id]
	if !ok {
		return false
	}
	e.Label = label
	s.notifyChange()
	return true
}

// ToggleAnchor flips an entity's anchored flag and returns the new value.
// ok is false if the entity is missing.
func (s *State) ToggleAnchor(id string) (anchored, ok bool) {
	e, found := s.entities[id]
	if !found {
		return false, false
	}
	e.Anchored = !e.Anchored
	s.notifyChange()
	return e.Anchored, true
}

// --- Selection ---

// Select replaces the selection with the single id.
func (s *State) Select(id string) {
	s.setSelectionSet(map[string]struct{}{id: {}})
	s.notifySelection()
}

// ToggleSelect adds id to the selection if absent, removes it if present.
func (s *State) ToggleSelect(id string) {
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		if e := s.entities[id]; e != nil {
			e.Selected = false
		}
	} else {
		s.selected[id] = struct{}{}
		if e := s.entities[id]; e != nil {
			e.Selected = true
		}
	}
	s.notifySelection()
}

// AddToSelection adds ids to the selection without clearing it.
func (s *State) AddToSelection(ids ...string) {
	for _, id := range ids {
		s.selected[id] = struct{}{}
		if e := s.entities[id]; e != nil {
			e.Selected = true
		}
	}
	s.notifySelection()
}

// ClearSelection empties the selection.
func (s *State) ClearSelection() {
	s.setSelectionSet(map[string]struct{}{})
	s.notifySelection()
}

// SetSelection replaces the selection with ids.
func (s *State) SetSelection(ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	s.setSelectionSet(set)
	s.notifySelection()
}

// setSelectionSet swaps the selection set and keeps entity Selected flags
// in sync. Does not notify.
func (s *State) setSelectionSet(set map[string]struct{}) {
	for id := range s.selected {
		if e := s.entities[id]; e != nil {
			e.Selected = false
		}
	}
	s.selected = set
	for id := range s.selected {
		if e := s.entities[id]; e != nil {
			e.Selected = true
		}
	}
}

// SelectedIDs returns the selected ids that resolve to live entities,
// sorted. Stale ids are tolerated in the set and filtered here.
func (s *State) SelectedIDs() []string {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		if _, ok := s.entities[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// IsSelected reports whether id is in the selection set.
func (s *State) IsSelected(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// --- Snapshot contract ---

// Capture produces a canonical deep-copy snapshot of the entire state.
// The snapshot shares no mutable storage with live entities.
func (s *State) Capture() Snapshot {
	snap := Snapshot{
		Entities:    make([]EntityRecord, 0, len(s.entities)),
		SelectedIDs: s.SelectedIDs(),
		IDCounter:   s.idCounter,
	}
	for _, e := range s.entities {
		snap.Entities = append(snap.Entities, e.Record())
	}
	sortRecords(snap.Entities)
	return snap
}

// Restore replaces the entity forest, selection, and id counter wholesale
// from a snapshot. Loaded world transforms are treated as stale and always
// recomputed from local transforms.
func (s *State) Restore(snap Snapshot) {
	entities := make(map[string]*Entity, len(snap.Entities))
	for _, r := range snap.Entities {
		entities[r.ID] = entityFromRecord(r)
	}
	selected := make(map[string]struct{}, len(snap.SelectedIDs))
	for _, id := range snap.SelectedIDs {
		selected[id] = struct{}{}
		if e := entities[id]; e != nil {
			e.Selected = true
		}
	}
	s.entities = entities
	s.selected = selected
	s.idCounter = snap.IDCounter
	propagateTransforms(s.entities)
	s.notifyChange()
	s.notifySelection()
}
