package domain

import "fmt"

// NoID marks an entity that has not been registered in a catalog yet.
// Catalog-assigned ids start at 1.
const NoID = 0

// NoOriginalID marks an entity that has no identifier in the source model.
const NoOriginalID = -1

// CommonSetID is the original id of the lazily created "applies to all
// analyses" load set and constraint set.
const CommonSetID = 0

// Reference is a non-owning handle to an entity. At least one of ID and
// OriginalID is set. Original ids are only unique within a Type.
type Reference[K ~string] struct {
	Type       K   `json:"type"`
	ID         int `json:"id,omitempty"`
	OriginalID int `json:"original_id"`
}

// RefByID builds a reference resolved through the internal id.
func RefByID[K ~string](typ K, id int) Reference[K] {
	return Reference[K]{Type: typ, ID: id, OriginalID: NoOriginalID}
}

// RefByOriginal builds a reference resolved through (type, original id).
func RefByOriginal[K ~string](typ K, originalID int) Reference[K] {
	return Reference[K]{Type: typ, ID: NoID, OriginalID: originalID}
}

// HasID reports whether the reference carries an internal id.
func (r Reference[K]) HasID() bool { return r.ID != NoID }

// HasOriginalID reports whether the reference carries an original id.
func (r Reference[K]) HasOriginalID() bool { return r.OriginalID != NoOriginalID }

// Valid reports whether the reference can be resolved at all.
func (r Reference[K]) Valid() bool { return r.HasID() || r.HasOriginalID() }

// Matches compares two references the way catalogs resolve them: by internal
// id when both sides carry one, otherwise by (type, original id).
func (r Reference[K]) Matches(o Reference[K]) bool {
	if r.HasID() && o.HasID() {
		return r.ID == o.ID
	}
	if r.HasOriginalID() && o.HasOriginalID() {
		return r.Type == o.Type && r.OriginalID == o.OriginalID
	}
	return false
}

func (r Reference[K]) String() string {
	switch {
	case r.HasID() && r.HasOriginalID():
		return fmt.Sprintf("%s#%d(orig %d)", r.Type, r.ID, r.OriginalID)
	case r.HasID():
		return fmt.Sprintf("%s#%d", r.Type, r.ID)
	default:
		return fmt.Sprintf("%s(orig %d)", r.Type, r.OriginalID)
	}
}

// Identity holds the identifying attributes shared by every catalogued entity.
type Identity[K ~string] struct {
	ID         int `json:"id"`
	OriginalID int `json:"original_id"`
	Type       K   `json:"type"`
}

// NewIdentity returns an identity with a type and original id but no internal id.
func NewIdentity[K ~string](typ K, originalID int) Identity[K] {
	return Identity[K]{ID: NoID, OriginalID: originalID, Type: typ}
}

// Ident exposes the identity for catalogs; entity structs embedding Identity
// get it promoted.
func (i *Identity[K]) Ident() *Identity[K] { return i }

// Reference returns a handle carrying every key the entity has.
func (i Identity[K]) Reference() Reference[K] {
	return Reference[K]{Type: i.Type, ID: i.ID, OriginalID: i.OriginalID}
}

// IsOriginal reports whether the entity came from the source model.
func (i Identity[K]) IsOriginal() bool { return i.OriginalID != NoOriginalID }

// ResetIdentity clears both keys so a clone can be registered as a new entity.
func (i *Identity[K]) ResetIdentity() {
	i.ID = NoID
	i.OriginalID = NoOriginalID
}
