package blob

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const blobDrivers = "femtrans/internal/infra/blob"

// TestOnlyBlobPackageImportsInfra keeps the object store drivers behind
// blob.Open. Test packages count too: callers exercise drivers through the
// facade or the blobtest contract.
func TestOnlyBlobPackageImportsInfra(t *testing.T) {
	pkgs, err := packages.Load(&packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}, "femtrans/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	found := map[string]struct{}{}
	for _, pkg := range pkgs {
		if pkg.PkgPath == "femtrans/internal/blob" || isDriver(pkg.PkgPath) {
			continue
		}
		for imp := range pkg.Imports {
			if isDriver(imp) {
				found[pkg.PkgPath+": "+imp] = struct{}{}
			}
		}
	}
	if len(found) == 0 {
		return
	}
	violations := make([]string, 0, len(found))
	for v := range found {
		violations = append(violations, v)
	}
	sort.Strings(violations)
	t.Fatalf("blob drivers imported outside internal/blob:\n%s", strings.Join(violations, "\n"))
}

func isDriver(path string) bool {
	return path == blobDrivers || strings.HasPrefix(path, blobDrivers+"/")
}
