package easel

import "encoding/json"

// Entity is the fundamental scene graph element. A single flat struct is
// used for all entity kinds; the Kind field is presentation metadata, not
// a type switch.
type Entity struct {
	// Identity
	ID    string
	Label string
	Kind  string

	// Transform. Local is authoritative: relative to the parent, or to the
	// canvas origin for a root. world is a cache, rewritten by every
	// propagation pass and never trusted across a restore.
	Local Vec2
	world Vec2

	Size Size
	Mode RenderMode

	// Hierarchy. ParentID is a weak reference by key: an empty or dangling
	// id means the entity is treated as a root. Children is ordered and
	// duplicate-free; unresolved ids are skipped during traversal.
	ParentID string
	Children []string

	// Flags
	Anchored bool
	Selected bool
}

func newEntity(id string, x, y float64, kind string) *Entity {
	return &Entity{
		ID:    id,
		Kind:  kind,
		Local: Vec2{x, y},
		world: Vec2{x, y},
		Size:  Size{Width: defaultEntityWidth, Height: defaultEntityHeight},
		Mode:  defaultRenderMode,
	}
}

const (
	defaultEntityWidth  = 120
	defaultEntityHeight = 60
)

// DefaultSize returns the size assigned to newly created entities.
func DefaultSize() Size {
	return Size{Width: defaultEntityWidth, Height: defaultEntityHeight}
}

// World returns the cached canvas-absolute position. Valid immediately
// after any propagation pass; stale otherwise.
func (e *Entity) World() Vec2 {
	return e.world
}

// computeWorldTransform refreshes the cached world position from the local
// transform. A nil parentWorld means the entity is a root.
func (e *Entity) computeWorldTransform(parentWorld *Vec2) {
	if parentWorld == nil {
		e.world = e.Local
		return
	}
	e.world = parentWorld.Add(e.Local)
}

// hasChild reports whether id is already in the children list.
func (e *Entity) hasChild(id string) bool {
	for _, c := range e.Children {
		if c == id {
			return true
		}
	}
	return false
}

// addChild appends id to the children list. Idempotent.
func (e *Entity) addChild(id string) {
	if !e.hasChild(id) {
		e.Children = append(e.Children, id)
	}
}

// removeChild removes id from the children list, preserving order.
// No-op if absent.
func (e *Entity) removeChild(id string) {
	for i, c := range e.Children {
		if c == id {
			e.Children = append(e.Children[:i], e.Children[i+1:]...)
			return
		}
	}
}

// --- Serialization ---

// EntityRecord is the JSON shape of an Entity. The write path always emits
// this shape; the read path additionally accepts the legacy flat
// positioning record (see UnmarshalJSON).
type EntityRecord struct {
	ID       string     `json:"id"`
	Label    string     `json:"label,omitempty"`
	Kind     string     `json:"kind,omitempty"`
	Local    Vec2       `json:"localTransform"`
	World    Vec2       `json:"worldTransform"`
	Mode     RenderMode `json:"renderMode"`
	Size     Size       `json:"size"`
	ParentID string     `json:"parentId,omitempty"`
	Children []string   `json:"children,omitempty"`
	Anchored bool       `json:"anchored,omitempty"`
	Selected bool       `json:"selected,omitempty"`
}

// legacyPositioning is the pre-hierarchy position record: a single flat
// position with per-axis modes and no local/world distinction.
type legacyPositioning struct {
	X     float64      `json:"x"`
	Y     float64      `json:"y"`
	ModeH PositionMode `json:"modeH"`
	ModeV PositionMode `json:"modeV"`
}

// UnmarshalJSON accepts either the current record shape or the legacy one.
// A legacy record is interpreted as a root-equivalent entity: the flat
// position becomes the local transform and the per-axis modes move into
// the render-mode record. Accepted on read only.
func (r *EntityRecord) UnmarshalJSON(data []byte) error {
	type current EntityRecord
	var aux struct {
		current
		Positioning *legacyPositioning `json:"positioning"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = EntityRecord(aux.current)
	if aux.Positioning != nil {
		p := aux.Positioning
		r.Local = Vec2{p.X, p.Y}
		r.World = r.Local
		r.Mode = defaultRenderMode
		if p.ModeH.valid() {
			r.Mode.Horizontal = p.ModeH
		}
		if p.ModeV.valid() {
			r.Mode.Vertical = p.ModeV
		}
	}
	if !r.Mode.Horizontal.valid() {
		r.Mode.Horizontal = defaultRenderMode.Horizontal
	}
	if !r.Mode.Vertical.valid() {
		r.Mode.Vertical = defaultRenderMode.Vertical
	}
	return nil
}

// Record returns a deep value copy of the entity. The copy shares no
// mutable storage with the entity, so stored snapshots cannot be corrupted
// by later live mutation.
func (e *Entity) Record() EntityRecord {
	var children []string
	if len(e.Children) > 0 {
		children = make([]string, len(e.Children))
		copy(children, e.Children)
	}
	return EntityRecord{
		ID:       e.ID,
		Label:    e.Label,
		Kind:     e.Kind,
		Local:    e.Local,
		World:    e.world,
		Mode:     e.Mode,
		Size:     e.Size,
		ParentID: e.ParentID,
		Children: children,
		Anchored: e.Anchored,
		Selected: e.Selected,
	}
}

// entityFromRecord reconstructs a live entity from a record. The record's
// world transform is carried over but treated as stale: callers must
// follow up with a propagation pass.
func entityFromRecord(r EntityRecord) *Entity {
	var children []string
	if len(r.Children) > 0 {
		children = make([]string, len(r.Children))
		copy(children, r.Children)
	}
	return &Entity{
		ID:       r.ID,
		Label:    r.Label,
		Kind:     r.Kind,
		Local:    r.Local,
		world:    r.World,
		Mode:     r.Mode,
		Size:     r.Size,
		ParentID: r.ParentID,
		Children: children,
		Anchored: r.Anchored,
		Selected: r.Selected,
	}
}

// equalRecords compares two entity records field by field, including
// children order.
func equalRecords(a, b EntityRecord) bool {
	if a.ID != b.ID || a.Label != b.Label || a.Kind != b.Kind ||
		a.Local != b.Local || a.World != b.World ||
		a.Mode != b.Mode || a.Size != b.Size ||
		a.ParentID != b.ParentID ||
		a.Anchored != b.Anchored || a.Selected != b.Selected {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if a.Children[i] != b.Children[i] {
			return false
		}
	}
	return true
}

// cloneRecord returns a deep copy of a record.
func cloneRecord(r EntityRecord) EntityRecord {
	out := r
	if len(r.Children) > 0 {
		out.Children = make([]string, len(r.Children))
		copy(out.Children, r.Children)
	}
	return out
}
