package duckdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/internal/testutil"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
	"github.com/leapstack-labs/leapgrid/pkg/source"
)

func TestSettingStatements(t *testing.T) {
	got := settingStatements(map[string]string{"threads": "2", "memory_limit": "1GB", "x": "it's"})
	assert.Equal(t, []string{
		"SET memory_limit = '1GB'",
		"SET threads = '2'",
		"SET x = 'it''s'",
	}, got)
	assert.Empty(t, settingStatements(nil))
}

func TestSource_FetchAndPush(t *testing.T) {
	ctx := context.Background()
	s := New(testutil.NewTestLogger(t))
	require.NoError(t, s.Open(ctx, source.Config{
		Type:    "duckdb",
		Table:   "scores",
		Key:     "id",
		Options: map[string]string{"threads": "1"},
	}))
	defer func() { _ = s.Close() }()

	_, err := s.DB.ExecContext(ctx, `CREATE TABLE scores (id INTEGER, player VARCHAR, score DOUBLE)`)
	require.NoError(t, err)
	_, err = s.DB.ExecContext(ctx, `INSERT INTO scores VALUES (1, 'ann', 1.5), (2, 'bob', 3.0)`)
	require.NoError(t, err)

	batch, err := s.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, batch.Rows, 2)
	assert.Equal(t, grid.TypeNumber, batch.Columns[2].Type)

	require.NoError(t, s.Push(ctx, []grid.CellChange{
		{Column: "score", New: 9.5, Values: grid.Row{"id": int32(1)}},
	}))

	var score float64
	require.NoError(t, s.DB.QueryRowContext(ctx, `SELECT score FROM scores WHERE id = 1`).Scan(&score))
	assert.InDelta(t, 9.5, score, 0.0001)
}
