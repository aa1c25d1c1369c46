package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/pricesense/internal/db"
)

func TestUpDown(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Up(ctx, database.DB))
	require.NoError(t, Up(ctx, database.DB), "second run must be a no-op")

	v, err := Version(ctx, database.DB)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	var tables []string
	require.NoError(t, database.SelectContext(ctx, &tables, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name IN ('users', 'scenarios', 'scenario_inputs', 'scenario_kpis')
		ORDER BY name
	`))
	assert.Equal(t, []string{"scenario_inputs", "scenario_kpis", "scenarios", "users"}, tables)

	require.NoError(t, Down(ctx, database.DB))
	v, err = Version(ctx, database.DB)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}
