package easel

import (
	"fmt"
	"sort"
)

// Snapshot is a fully independent value copy of everything needed to
// reconstruct application state: the entity forest, the selection, and the
// id counter. Snapshots are stored in the history grid indefinitely, so
// they must never alias live entities.
//
// Capture canonicalizes ordering (entities and selection sorted by id) so
// that two captures of the same state compare equal regardless of map
// iteration order.
type Snapshot struct {
	Entities    []EntityRecord `json:"entities"`
	SelectedIDs []string       `json:"selectedIds"`
	IDCounter   int            `json:"idCounter"`
}

// Clone returns a deep copy sharing no mutable storage with s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{IDCounter: s.IDCounter}
	if len(s.Entities) > 0 {
		out.Entities = make([]EntityRecord, len(s.Entities))
		for i, r := range s.Entities {
			out.Entities[i] = cloneRecord(r)
		}
	}
	if len(s.SelectedIDs) > 0 {
		out.SelectedIDs = make([]string, len(s.SelectedIDs))
		copy(out.SelectedIDs, s.SelectedIDs)
	}
	return out
}

// Equal compares two snapshots by value.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.IDCounter != other.IDCounter {
		return false
	}
	if len(s.Entities) != len(other.Entities) {
		return false
	}
	for i := range s.Entities {
		if !equalRecords(s.Entities[i], other.Entities[i]) {
			return false
		}
	}
	if len(s.SelectedIDs) != len(other.SelectedIDs) {
		return false
	}
	for i := range s.SelectedIDs {
		if s.SelectedIDs[i] != other.SelectedIDs[i] {
			return false
		}
	}
	return true
}

// validateForest checks that the records form a forest: unique ids, each
// id owned by at most one children list, and no cycle through parent or
// ownership links. Dangling references are tolerated (structural drift is
// skipped at traversal time); a cycle is not, because it would hang
// ancestry walks over the live state.
func (s Snapshot) validateForest() error {
	parentOf := make(map[string]string, len(s.Entities))
	for _, r := range s.Entities {
		if _, dup := parentOf[r.ID]; dup {
			return fmt.Errorf("duplicate entity id %q", r.ID)
		}
		parentOf[r.ID] = r.ParentID
	}

	owner := make(map[string]string, len(s.Entities))
	for _, r := range s.Entities {
		for _, child := range r.Children {
			if prev, ok := owner[child]; ok {
				if prev == r.ID {
					return fmt.Errorf("entity %q listed twice under %q", child, r.ID)
				}
				return fmt.Errorf("entity %q owned by both %q and %q", child, prev, r.ID)
			}
			owner[child] = r.ID
		}
	}

	// Parent and ownership chains must terminate. A chain longer than the
	// entity count can only mean a cycle.
	limit := len(s.Entities)
	for id, parent := range parentOf {
		cur := parent
		for steps := 0; cur != ""; steps++ {
			if steps >= limit {
				return fmt.Errorf("parent cycle through %q", id)
			}
			next, ok := parentOf[cur]
			if !ok {
				break
			}
			cur = next
		}
	}
	for id := range owner {
		cur := id
		for steps := 0; ; steps++ {
			prev, ok := owner[cur]
			if !ok {
				break
			}
			if steps >= limit {
				return fmt.Errorf("ownership cycle through %q", id)
			}
			cur = prev
		}
	}
	return nil
}

// sortRecords orders entity records by id for canonical snapshots.
func sortRecords(records []EntityRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
}
