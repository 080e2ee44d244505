package core

import "femtrans/pkg/domain"

type memberBucket[S ~string, M ~string] struct {
	set domain.Reference[S]
	// owner is the full reference of the set last registered through this
	// bucket; the id bucket and the original-id bucket of a set share it.
	owner   domain.Reference[S]
	members []domain.Reference[M]
}

func (b *memberBucket[S, M]) add(member domain.Reference[M]) {
	for _, existing := range b.members {
		if existing.Matches(member) {
			return
		}
	}
	b.members = append(b.members, member)
}

func (b *memberBucket[S, M]) remove(member domain.Reference[M]) {
	out := b.members[:0]
	for _, existing := range b.members {
		if !existing.Matches(member) {
			out = append(out, existing)
		}
	}
	b.members = out
}

func (b *memberBucket[S, M]) contains(member domain.Reference[M]) bool {
	for _, existing := range b.members {
		if existing.Matches(member) {
			return true
		}
	}
	return false
}

// membershipIndex is a many-to-many relation between sets and members, keyed
// redundantly by the set's internal id and by its (type, original id).
type membershipIndex[S ~string, M ~string] struct {
	byID       map[int]*memberBucket[S, M]
	byOriginal map[S]map[int]*memberBucket[S, M]
	buckets    []*memberBucket[S, M]
}

func newMembershipIndex[S ~string, M ~string]() *membershipIndex[S, M] {
	return &membershipIndex[S, M]{
		byID:       make(map[int]*memberBucket[S, M]),
		byOriginal: make(map[S]map[int]*memberBucket[S, M]),
	}
}

func (ix *membershipIndex[S, M]) idBucket(set domain.Reference[S], create bool) *memberBucket[S, M] {
	b, ok := ix.byID[set.ID]
	if !ok && create {
		b = &memberBucket[S, M]{set: domain.Reference[S]{Type: set.Type, ID: set.ID, OriginalID: domain.NoOriginalID}}
		ix.byID[set.ID] = b
		ix.buckets = append(ix.buckets, b)
	}
	return b
}

func (ix *membershipIndex[S, M]) originalBucket(set domain.Reference[S], create bool) *memberBucket[S, M] {
	byType, ok := ix.byOriginal[set.Type]
	if !ok {
		if !create {
			return nil
		}
		byType = make(map[int]*memberBucket[S, M])
		ix.byOriginal[set.Type] = byType
	}
	b, ok := byType[set.OriginalID]
	if !ok && create {
		b = &memberBucket[S, M]{set: domain.RefByOriginal(set.Type, set.OriginalID)}
		byType[set.OriginalID] = b
		ix.buckets = append(ix.buckets, b)
	}
	return b
}

// bucketsOf returns the buckets reachable through any key of set.
func (ix *membershipIndex[S, M]) bucketsOf(set domain.Reference[S]) []*memberBucket[S, M] {
	var out []*memberBucket[S, M]
	if set.HasID() {
		if b := ix.idBucket(set, false); b != nil {
			out = append(out, b)
		}
	}
	if set.HasOriginalID() {
		if b := ix.originalBucket(set, false); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (ix *membershipIndex[S, M]) add(set domain.Reference[S], member domain.Reference[M]) {
	if set.HasID() {
		b := ix.idBucket(set, true)
		b.owner = set
		b.add(member)
	}
	if set.HasOriginalID() {
		b := ix.originalBucket(set, true)
		b.owner = set
		b.add(member)
	}
}

// members unions the members registered under every key of set.
func (ix *membershipIndex[S, M]) members(set domain.Reference[S]) []domain.Reference[M] {
	var out []domain.Reference[M]
	for _, b := range ix.bucketsOf(set) {
		for _, member := range b.members {
			dup := false
			for _, seen := range out {
				if seen.Matches(member) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, member)
			}
		}
	}
	return out
}

// setsOf returns the set keys whose buckets hold member.
func (ix *membershipIndex[S, M]) setsOf(member domain.Reference[M]) []domain.Reference[S] {
	var out []domain.Reference[S]
	for _, b := range ix.buckets {
		if b.contains(member) {
			out = append(out, b.set)
		}
	}
	return out
}

func (ix *membershipIndex[S, M]) removeMember(member domain.Reference[M]) {
	for _, b := range ix.buckets {
		b.remove(member)
	}
}

func (ix *membershipIndex[S, M]) removeFromSet(member domain.Reference[M], set domain.Reference[S]) {
	for _, b := range ix.bucketsOf(set) {
		b.remove(member)
	}
}

func (ix *membershipIndex[S, M]) dropSet(set domain.Reference[S]) {
	drop := ix.bucketsOf(set)
	if len(drop) == 0 {
		return
	}
	if set.HasID() {
		delete(ix.byID, set.ID)
	}
	if set.HasOriginalID() {
		if byType := ix.byOriginal[set.Type]; byType != nil {
			delete(byType, set.OriginalID)
		}
	}
	out := ix.buckets[:0]
	for _, b := range ix.buckets {
		keep := true
		for _, d := range drop {
			if b == d {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, b)
		}
	}
	ix.buckets = out
}

// entries lists each (set, member) pair once even though a member sits in
// both buckets of its set.
func (ix *membershipIndex[S, M]) entries() []domain.Membership[S, M] {
	var out []domain.Membership[S, M]
	seen := make(map[domain.Reference[S]][]domain.Reference[M])
	for _, b := range ix.buckets {
		set := b.owner
		if !set.Valid() {
			set = b.set
		}
		for _, member := range b.members {
			dup := false
			for _, prev := range seen[set] {
				if prev.Matches(member) {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			seen[set] = append(seen[set], member)
			out = append(out, domain.Membership[S, M]{Set: set, Member: member})
		}
	}
	return out
}
