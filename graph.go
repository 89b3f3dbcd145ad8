package easel

// Scene graph traversal and structural operations over an id-keyed entity
// collection. These are pure tree functions: no selection, no history, no
// notification. State wraps them with the bookkeeping.

// propagateTransforms recomputes the cached world transform of every
// entity. Traversal is depth-first from each root; a root is an entity
// whose parent id is empty or does not resolve. Child ids that do not
// resolve are skipped. Must run after any change to a local transform or a
// parent/children link anywhere in the forest.
func propagateTransforms(entities map[string]*Entity) {
	visited := make(map[string]bool, len(entities))
	for id, e := range entities {
		if _, ok := entities[e.ParentID]; e.ParentID != "" && ok {
			continue
		}
		propagateFrom(id, nil, entities, visited)
	}
}

// propagateFrom recurses over one subtree. The visited guard makes the
// traversal terminate even on structurally invalid input (a cycle or a
// duplicated child reference smuggled in through a hand-edited payload).
func propagateFrom(id string, parentWorld *Vec2, entities map[string]*Entity, visited map[string]bool) {
	e, ok := entities[id]
	if !ok || visited[id] {
		return
	}
	visited[id] = true
	e.computeWorldTransform(parentWorld)
	for _, childID := range e.Children {
		propagateFrom(childID, &e.world, entities, visited)
	}
}

// isAncestor reports whether candidate is id itself or an ancestor of id,
// following parent links. Dangling parent ids end the walk.
func isAncestor(candidate, id string, entities map[string]*Entity) bool {
	// Same visited guard as propagateFrom: a parent cycle smuggled in
	// through a hand-edited payload must not spin this walk forever.
	seen := make(map[string]bool, len(entities))
	for cur := id; cur != "" && !seen[cur]; {
		if cur == candidate {
			return true
		}
		seen[cur] = true
		e, ok := entities[cur]
		if !ok {
			return false
		}
		cur = e.ParentID
	}
	return false
}

// reparentEntity moves child under newParentID (empty string makes it a
// root), preserving the child's world position. Returns false without
// mutation if the child is missing, a non-empty parent id does not
// resolve, or the reparent would create a cycle.
func reparentEntity(childID, newParentID string, entities map[string]*Entity) bool {
	child, ok := entities[childID]
	if !ok {
		return false
	}
	var newParent *Entity
	if newParentID != "" {
		newParent, ok = entities[newParentID]
		if !ok {
			return false
		}
		if isAncestor(childID, newParentID, entities) {
			return false
		}
	}

	world := child.world

	if old, ok := entities[child.ParentID]; ok {
		old.removeChild(childID)
	}

	child.ParentID = newParentID
	if newParent != nil {
		newParent.addChild(childID)
		child.Local = world.Sub(newParent.world)
	} else {
		child.Local = world
	}

	propagateTransforms(entities)
	return true
}

// moveEntityTo sets an entity's world position, expressed back into its
// parent's space. Descendants follow for free: only this entity's local
// transform changes and the propagation pass re-derives the rest. Returns
// false if the entity is missing or anchored.
func moveEntityTo(id string, worldX, worldY float64, entities map[string]*Entity) bool {
	e, ok := entities[id]
	if !ok || e.Anchored {
		return false
	}
	target := Vec2{worldX, worldY}
	if parent, ok := entities[e.ParentID]; ok && e.ParentID != "" {
		e.Local = target.Sub(parent.world)
	} else {
		e.Local = target
	}
	propagateTransforms(entities)
	return true
}
