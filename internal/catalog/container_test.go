package catalog

import (
	"errors"
	"testing"

	"femtrans/pkg/domain"
)

func newLoadings() *Container[*domain.Loading, domain.LoadingType] {
	return New[*domain.Loading, domain.LoadingType](domain.EntityLoading, Hooks[*domain.Loading]{})
}

func TestContainerAssignsIDsInOrder(t *testing.T) {
	c := newLoadings()
	first, err := c.Add(domain.NewLoading(domain.LoadNodalForce, 10))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, _ := c.Add(domain.NewLoading(domain.LoadGravity, 10))
	third, _ := c.Add(domain.NewLoading(domain.LoadNodalForce, domain.NoOriginalID))
	if first.ID != 1 || second.ID != 2 || third.ID != 3 {
		t.Fatalf("expected sequential ids, got %d %d %d", first.ID, second.ID, third.ID)
	}
	all := c.All()
	if len(all) != 3 || all[0] != first || all[2] != third {
		t.Fatalf("expected insertion order, got %+v", all)
	}
	if c.Kind() != domain.EntityLoading || c.Len() != 3 {
		t.Fatalf("unexpected kind %s or length %d", c.Kind(), c.Len())
	}
}

func TestContainerFind(t *testing.T) {
	c := newLoadings()
	l, _ := c.Add(domain.NewLoading(domain.LoadNodalForce, 10))

	if got, ok := c.Find(domain.RefByOriginal(domain.LoadNodalForce, 10)); !ok || got != l {
		t.Fatalf("expected lookup by original id")
	}
	if got, ok := c.Find(domain.RefByID(domain.LoadNodalForce, l.ID)); !ok || got != l {
		t.Fatalf("expected lookup by internal id")
	}
	if _, ok := c.Find(domain.RefByOriginal(domain.LoadGravity, 10)); ok {
		t.Fatalf("original ids are scoped by type")
	}
	if _, ok := c.Find(domain.Reference[domain.LoadingType]{Type: domain.LoadNodalForce, OriginalID: domain.NoOriginalID}); ok {
		t.Fatalf("an empty reference must not resolve")
	}
}

func TestContainerRejectsDuplicates(t *testing.T) {
	c := newLoadings()
	if _, err := c.Add(domain.NewLoading(domain.LoadNodalForce, 10)); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := c.Add(domain.NewLoading(domain.LoadNodalForce, 10))
	if !errors.Is(err, domain.ErrDuplicateEntity) {
		t.Fatalf("expected duplicate entity, got %v", err)
	}
	var dup domain.DuplicateEntityError
	if !errors.As(err, &dup) || dup.OriginalID != 10 || dup.Entity != domain.EntityLoading {
		t.Fatalf("unexpected duplicate error %+v", dup)
	}

	taken := domain.NewLoading(domain.LoadGravity, domain.NoOriginalID)
	taken.ID = 1
	if _, err := c.Add(taken); !errors.Is(err, domain.ErrDuplicateEntity) {
		t.Fatalf("expected duplicate on reused internal id, got %v", err)
	}
}

func TestContainerKeepsExplicitIDs(t *testing.T) {
	c := newLoadings()
	explicit := domain.NewLoading(domain.LoadNodalForce, 1)
	explicit.ID = 40
	if _, err := c.Add(explicit); err != nil {
		t.Fatalf("add: %v", err)
	}
	next, _ := c.Add(domain.NewLoading(domain.LoadNodalForce, 2))
	if next.ID != 41 {
		t.Fatalf("expected ids to continue after 40, got %d", next.ID)
	}
}

func TestContainerMergeHook(t *testing.T) {
	merged := 0
	c := New[*domain.Loading, domain.LoadingType](domain.EntityLoading, Hooks[*domain.Loading]{
		Merge: func(existing, incoming *domain.Loading) (*domain.Loading, error) {
			merged++
			existing.Force = existing.Force.Add(incoming.Force)
			return existing, nil
		},
	})
	first := domain.NewLoading(domain.LoadNodalForce, 1)
	first.Force = domain.Vector3{1, 0, 0}
	second := domain.NewLoading(domain.LoadNodalForce, 1)
	second.Force = domain.Vector3{0, 2, 0}
	if _, err := c.Add(first); err != nil {
		t.Fatalf("add: %v", err)
	}
	kept, err := c.Add(second)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if kept != first || merged != 1 || c.Len() != 1 {
		t.Fatalf("expected the existing entity kept, got %+v", kept)
	}
	if first.Force != (domain.Vector3{1, 2, 0}) {
		t.Fatalf("expected merged force, got %v", first.Force)
	}
}

func TestContainerMergeReplaces(t *testing.T) {
	c := New[*domain.Loading, domain.LoadingType](domain.EntityLoading, Hooks[*domain.Loading]{
		Merge: func(_, incoming *domain.Loading) (*domain.Loading, error) { return incoming, nil },
	})
	first, _ := c.Add(domain.NewLoading(domain.LoadNodalForce, 1))
	second := domain.NewLoading(domain.LoadNodalForce, 1)
	kept, err := c.Add(second)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if kept != second || c.Len() != 1 {
		t.Fatalf("expected the incoming entity to replace the existing one")
	}
	if _, ok := c.Get(first.ID); ok {
		t.Fatalf("replaced entity must be gone")
	}
}

func TestContainerTransientEntities(t *testing.T) {
	c := New[*domain.Loading, domain.LoadingType](domain.EntityLoading, Hooks[*domain.Loading]{
		Transient: func(l *domain.Loading) bool { return l.Type == domain.LoadRotation },
	})
	hidden, _ := c.Add(domain.NewLoading(domain.LoadRotation, 3))
	if _, ok := c.Get(hidden.ID); ok || c.Len() != 0 {
		t.Fatalf("transient entity must not be iterable")
	}
	if _, ok := c.Find(domain.RefByOriginal(domain.LoadRotation, 3)); !ok {
		t.Fatalf("transient entity must resolve by original key")
	}
}

func TestContainerEraseAndFilter(t *testing.T) {
	c := newLoadings()
	force, _ := c.Add(domain.NewLoading(domain.LoadNodalForce, 1))
	gravity, _ := c.Add(domain.NewLoading(domain.LoadGravity, 1))
	c.Add(domain.NewLoading(domain.LoadNodalForce, 2))

	if got := c.Filter(domain.LoadNodalForce); len(got) != 2 || got[0] != force {
		t.Fatalf("unexpected filter result %+v", got)
	}
	if !c.Erase(force.Reference()) {
		t.Fatalf("expected erase to succeed")
	}
	if c.Erase(force.Reference()) {
		t.Fatalf("second erase must report nothing removed")
	}
	if c.Contains(domain.RefByOriginal(domain.LoadNodalForce, 1)) {
		t.Fatalf("erased entity still resolves by original id")
	}
	if got, ok := c.FindByOriginalID(1); !ok || got != gravity {
		t.Fatalf("expected the gravity load to remain under original id 1")
	}
	snapshot := c.All()
	c.Erase(gravity.Reference())
	if len(snapshot) != 2 {
		t.Fatalf("snapshot must not change with the container")
	}
}

func TestFindByOriginalIDPrefersLatestType(t *testing.T) {
	c := newLoadings()
	c.Add(domain.NewLoading(domain.LoadNodalForce, 5))
	gravity, _ := c.Add(domain.NewLoading(domain.LoadGravity, 5))
	if got, ok := c.FindByOriginalID(5); !ok || got != gravity {
		t.Fatalf("expected the most recently registered type to win")
	}
	if _, ok := c.FindByOriginalID(6); ok {
		t.Fatalf("unknown original id must not resolve")
	}
}
