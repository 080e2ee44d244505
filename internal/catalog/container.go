// Package catalog provides the insertion-ordered entity container used by
// the model for every entity kind.
package catalog

import (
	"femtrans/pkg/domain"
)

// Identifiable is satisfied by every entity struct embedding domain.Identity.
type Identifiable[K ~string] interface {
	Ident() *domain.Identity[K]
}

// Hooks customize a container for a particular entity kind.
type Hooks[E any] struct {
	// Merge is consulted when an added entity collides with an existing one
	// on its original key. It returns the entity to keep, or an error.
	// Without Merge every collision is a DuplicateEntityError.
	Merge func(existing, incoming E) (E, error)
	// Transient entities are only indexed by (type, original id): they are
	// invisible to Get and to iteration.
	Transient func(E) bool
}

// Container owns the entities of one kind, indexed by internal id and by
// (type, original id). Iteration follows insertion order.
type Container[E Identifiable[K], K ~string] struct {
	kind       domain.EntityKind
	hooks      Hooks[E]
	lastID     int
	order      []int
	byID       map[int]E
	byOriginal map[K]map[int]E
	types      []K
}

// New returns an empty container for kind.
func New[E Identifiable[K], K ~string](kind domain.EntityKind, hooks Hooks[E]) *Container[E, K] {
	return &Container[E, K]{
		kind:       kind,
		hooks:      hooks,
		byID:       make(map[int]E),
		byOriginal: make(map[K]map[int]E),
	}
}

// Kind returns the entity kind held by the container.
func (c *Container[E, K]) Kind() domain.EntityKind { return c.kind }

func (c *Container[E, K]) duplicate(id *domain.Identity[K]) error {
	return domain.DuplicateEntityError{Entity: c.kind, Type: string(id.Type), ID: id.ID, OriginalID: id.OriginalID}
}

// Add registers e, assigning an internal id when it has none. It returns the
// entity actually stored, which differs from e when a Merge hook keeps the
// existing entity.
func (c *Container[E, K]) Add(e E) (E, error) {
	id := e.Ident()
	if id.IsOriginal() {
		if existing, ok := c.byOriginal[id.Type][id.OriginalID]; ok {
			if c.hooks.Merge == nil {
				return e, c.duplicate(id)
			}
			kept, err := c.hooks.Merge(existing, e)
			if err != nil {
				return e, err
			}
			if kept.Ident() == existing.Ident() {
				return existing, nil
			}
			c.remove(existing)
			return c.insert(kept)
		}
	}
	if id.ID != domain.NoID {
		if _, ok := c.byID[id.ID]; ok {
			return e, c.duplicate(id)
		}
	}
	return c.insert(e)
}

func (c *Container[E, K]) insert(e E) (E, error) {
	id := e.Ident()
	if id.ID == domain.NoID {
		c.lastID++
		id.ID = c.lastID
	} else if id.ID > c.lastID {
		c.lastID = id.ID
	}
	if c.hooks.Transient == nil || !c.hooks.Transient(e) {
		c.byID[id.ID] = e
		c.order = append(c.order, id.ID)
	}
	if id.IsOriginal() {
		bucket, ok := c.byOriginal[id.Type]
		if !ok {
			bucket = make(map[int]E)
			c.byOriginal[id.Type] = bucket
			c.types = append(c.types, id.Type)
		}
		bucket[id.OriginalID] = e
	}
	return e, nil
}

// Find resolves ref by internal id when it carries one, else by
// (type, original id). Absence is not an error.
func (c *Container[E, K]) Find(ref domain.Reference[K]) (E, bool) {
	if ref.HasID() {
		e, ok := c.byID[ref.ID]
		return e, ok
	}
	if ref.HasOriginalID() {
		e, ok := c.byOriginal[ref.Type][ref.OriginalID]
		return e, ok
	}
	var zero E
	return zero, false
}

// FindByOriginalID searches every type for originalID. When several types
// reuse the id, the match in the most recently registered type wins.
func (c *Container[E, K]) FindByOriginalID(originalID int) (E, bool) {
	var (
		found E
		ok    bool
	)
	for _, t := range c.types {
		if e, hit := c.byOriginal[t][originalID]; hit {
			found, ok = e, true
		}
	}
	return found, ok
}

// Get is the fast path for a known internal id.
func (c *Container[E, K]) Get(id int) (E, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Contains reports whether ref resolves.
func (c *Container[E, K]) Contains(ref domain.Reference[K]) bool {
	_, ok := c.Find(ref)
	return ok
}

// Erase removes the entity ref resolves to from both indices. It reports
// whether something was removed.
func (c *Container[E, K]) Erase(ref domain.Reference[K]) bool {
	e, ok := c.Find(ref)
	if !ok {
		return false
	}
	c.remove(e)
	return true
}

func (c *Container[E, K]) remove(e E) {
	id := e.Ident()
	if stored, hit := c.byID[id.ID]; hit && stored.Ident() == id {
		delete(c.byID, id.ID)
		for i, v := range c.order {
			if v == id.ID {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	if id.IsOriginal() {
		if bucket := c.byOriginal[id.Type]; bucket != nil {
			if stored, hit := bucket[id.OriginalID]; hit && stored.Ident() == id {
				delete(bucket, id.OriginalID)
			}
		}
	}
}

// Len returns the number of iterable entities.
func (c *Container[E, K]) Len() int { return len(c.order) }

// All returns the iterable entities in insertion order. The slice is a
// snapshot, safe to hold while the container is modified.
func (c *Container[E, K]) All() []E {
	out := make([]E, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Filter returns the entities of the given types in insertion order.
func (c *Container[E, K]) Filter(types ...K) []E {
	var out []E
	for _, e := range c.All() {
		for _, t := range types {
			if e.Ident().Type == t {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
