package systems

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/botsofcog/sandtable/config"
	"github.com/botsofcog/sandtable/terrain"
)

// testCfg loads the embedded defaults and resizes the grid for tests.
func testCfg(t *testing.T, w, h int) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Grid.Width = w
	cfg.Grid.Height = h
	cfg.Derived.CellN = w * h
	return cfg
}

func testGrid(t *testing.T, w, h int) *terrain.Grid {
	t.Helper()
	g, err := terrain.NewGrid(w, h)
	require.NoError(t, err)
	return g
}
