//go:build governance

package grid_test

import (
	"go/types"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/leapstack-labs/leapgrid"

// =============================================================================
// RENDER BOUNDARY TEST - Renderers read the View, they do not reach the Store
// =============================================================================

// TestGovernance_RenderersUseView verifies that render boundaries (internal/ui,
// internal/tui) never call Store methods directly. They mutate through Grid
// operations and paint from Grid.View.
func TestGovernance_RenderersUseView(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/internal/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	renderers := []string{modulePath + "/internal/ui", modulePath + "/internal/tui"}

	for _, p := range pkgs {
		if !isRenderer(p.PkgPath, renderers) || p.TypesInfo == nil {
			continue
		}
		for ident, obj := range p.TypesInfo.Uses {
			fn, ok := obj.(*types.Func)
			if !ok || fn.Pkg() == nil || fn.Pkg().Path() != modulePath+"/pkg/grid" {
				continue
			}
			sig, ok := fn.Type().(*types.Signature)
			if !ok || sig.Recv() == nil {
				continue
			}
			if strings.HasSuffix(sig.Recv().Type().String(), "grid.Store") {
				t.Errorf("BOUNDARY VIOLATION: %s calls Store.%s at %s.\n"+
					"   Fix: use the Grid operation or Grid.View instead.",
					strings.TrimPrefix(p.PkgPath, modulePath+"/"), fn.Name(), p.Fset.Position(ident.Pos()))
			}
		}
	}
}

func isRenderer(path string, renderers []string) bool {
	for _, r := range renderers {
		if path == r || strings.HasPrefix(path, r+"/") {
			return true
		}
	}
	return false
}

// =============================================================================
// PURITY TEST - No type alias re-exports of grid types
// =============================================================================

// TestGovernance_NoTypeAliasReexports ensures no package re-exports grid
// types as aliases.
func TestGovernance_NoTypeAliasReexports(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedTypes,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 || pkg.PkgPath == modulePath+"/pkg/grid" {
			continue
		}
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			typeName, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !typeName.IsAlias() {
				continue
			}
			named, ok := types.Unalias(typeName.Type()).(*types.Named)
			if !ok || named.Obj().Pkg() == nil {
				continue
			}
			if named.Obj().Pkg().Path() == modulePath+"/pkg/grid" {
				t.Errorf("PURITY VIOLATION: Package '%s' re-exports grid type alias '%s'.\n"+
					"   Fix: Remove the alias. Consumers should use grid.%s directly.",
					strings.TrimPrefix(pkg.PkgPath, modulePath+"/"), name, named.Obj().Name())
			}
		}
	}
}
