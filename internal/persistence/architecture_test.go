package persistence

import (
	"go/types"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestStoreImplementationsStayInInfra fails when a package outside the
// sanctioned driver directories implements the snapshot store.
func TestStoreImplementationsStayInInfra(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes}
	pkgs, err := packages.Load(cfg, "femtrans/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	var store *types.Interface
	for _, p := range pkgs {
		if p.PkgPath != "femtrans/internal/persistence/core" {
			continue
		}
		obj := p.Types.Scope().Lookup("Store")
		if obj == nil {
			t.Fatalf("core.Store not found")
		}
		iface, ok := obj.Type().Underlying().(*types.Interface)
		if !ok {
			t.Fatalf("core.Store is not an interface")
		}
		store = iface
	}
	if store == nil {
		t.Fatalf("failed to resolve core.Store")
	}
	allowed := map[string]struct{}{
		"femtrans/internal/infra/persistence/memory":   {},
		"femtrans/internal/infra/persistence/sqlite":   {},
		"femtrans/internal/infra/persistence/postgres": {},
	}
	var unexpected []string
	for _, p := range pkgs {
		if p.Types == nil {
			continue
		}
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok {
				continue
			}
			named, ok := tn.Type().(*types.Named)
			if !ok {
				continue
			}
			if _, isStruct := named.Underlying().(*types.Struct); !isStruct {
				continue
			}
			if !types.Implements(types.NewPointer(named), store) {
				continue
			}
			if _, ok := allowed[p.PkgPath]; !ok {
				unexpected = append(unexpected, p.PkgPath+"."+name)
			}
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		t.Fatalf("unexpected snapshot store implementations (add the driver to the allowed list deliberately):\n%s", strings.Join(unexpected, "\n"))
	}
}

// TestOnlyPersistenceImportsInfra keeps the store drivers behind
// persistence.Open.
func TestOnlyPersistenceImportsInfra(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "femtrans/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	const infra = "femtrans/internal/infra/persistence/"
	var violations []string
	for _, p := range pkgs {
		if p.PkgPath == "femtrans/internal/persistence" || strings.HasPrefix(p.PkgPath, infra) {
			continue
		}
		for path := range p.Imports {
			if strings.HasPrefix(path, infra) {
				violations = append(violations, p.PkgPath+": "+path)
			}
		}
	}
	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("forbidden imports of persistence drivers:\n%s", strings.Join(violations, "\n"))
	}
}
