package reload

import (
	"testing"

	"tintcore/testutil"
)

var categoryPackages = []string{
	"tintcore/internal/colormap",
	"tintcore/internal/lightmap",
	"tintcore/internal/blockprops",
	"tintcore/internal/dimension",
	"tintcore/internal/particle",
	"tintcore/internal/item",
}

// The driver knows categories only through Reloader.
func TestReloadDoesNotImportCategories(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.ImportsUnder(categoryPackages...), "reload drives categories through Reloader only")
}

func TestReloadDoesNotImportCommands(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.ImportsUnder("tintcore/cmd"), "library code must not depend on commands")
}
