package source

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/internal/testutil"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

func TestBaseSQLSource_Close(t *testing.T) {
	tests := []struct {
		name    string
		setupDB bool
	}{
		{name: "close with nil DB", setupDB: false},
		{name: "close with open DB", setupDB: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLSource{}
			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				mock.ExpectClose()
				base.DB = db
			}
			assert.NoError(t, base.Close())
			assert.Equal(t, tt.setupDB, base.IsConnected())
		})
	}
}

func TestBaseSQLSource_SelectQuery(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{name: "table", cfg: Config{Table: "people"}, want: `SELECT * FROM "people"`},
		{name: "qualified table", cfg: Config{Table: "hr.people"}, want: `SELECT * FROM "hr"."people"`},
		{name: "query wins", cfg: Config{Table: "people", Query: " SELECT 1 "}, want: "SELECT 1"},
		{name: "nothing to read", cfg: Config{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &BaseSQLSource{Cfg: tt.cfg}
			got, err := b.SelectQuery()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBaseSQLSource_Fetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("id").OfType("INTEGER", int64(0)),
		sqlmock.NewColumn("name").OfType("TEXT", ""),
		sqlmock.NewColumn("joined").OfType("DATE", ""),
	).
		AddRow(int64(1), []byte("Ann"), "2024-03-05").
		AddRow(int64(2), []byte("bob"), "2023-01-10")
	mock.ExpectQuery(`SELECT \* FROM "people"`).WillReturnRows(rows)

	b := &BaseSQLSource{DB: db, Cfg: Config{Table: "people", Key: "id"}, Logger: testutil.NewTestLogger(t)}
	batch, err := b.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, batch.Rows, 2)
	assert.Equal(t, grid.Row{"id": int64(1), "name": "Ann", "joined": "2024-03-05"}, batch.Rows[0])

	require.Len(t, batch.Columns, 3)
	assert.Equal(t, grid.TypeNumber, batch.Columns[0].Type)
	assert.Equal(t, grid.FrozenLeft, batch.Columns[0].Frozen)
	assert.False(t, batch.Columns[0].Editable, "the key column is read-only")
	assert.Equal(t, grid.TypeText, batch.Columns[1].Type)
	assert.True(t, batch.Columns[1].Editable)
	assert.Equal(t, grid.TypeDate, batch.Columns[2].Type)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseSQLSource_FetchErrors(t *testing.T) {
	b := &BaseSQLSource{Cfg: Config{Table: "people"}}
	_, err := b.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectQuery(`SELECT`).WillReturnError(assert.AnError)

	b.DB = db
	_, err = b.Fetch(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBaseSQLSource_Push(t *testing.T) {
	changes := []grid.CellChange{
		{Row: 0, Column: "age", Old: 28, New: 45, Values: grid.Row{"id": 1, "age": 45}},
		{Row: 1, Column: "id", Old: 2, New: 20, Values: grid.Row{"id": 20, "age": 26}},
	}

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		expectErr bool
	}{
		{
			name: "all updates commit",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE "people" SET "age" = \$1 WHERE "id" = \$2`).
					WithArgs(45, 1).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`UPDATE "people" SET "id" = \$1 WHERE "id" = \$2`).
					WithArgs(20, 2).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "unmatched key rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE "people" SET "age"`).
					WithArgs(45, 1).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			expectErr: true,
		},
		{
			name: "statement error rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE`).WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			b := &BaseSQLSource{
				DB:          db,
				Cfg:         Config{Table: "people", Key: "id"},
				Logger:      testutil.NewTestLogger(t),
				Placeholder: DollarPlaceholder,
			}
			err = b.Push(context.Background(), changes)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBaseSQLSource_PushNeedsKey(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	b := &BaseSQLSource{DB: db, Cfg: Config{Table: "people"}}
	assert.NoError(t, b.Push(context.Background(), nil), "nothing to push")
	assert.Error(t, b.Push(context.Background(), []grid.CellChange{{Column: "age"}}))
}

func TestInferType(t *testing.T) {
	tests := map[string]grid.ColumnType{
		"INTEGER":       grid.TypeNumber,
		"numeric(10,2)": grid.TypeNumber,
		"DOUBLE":        grid.TypeNumber,
		"date":          grid.TypeDate,
		"TIMESTAMPTZ":   grid.TypeDateTime,
		"VARCHAR":       grid.TypeText,
		"":              grid.TypeText,
	}
	for in, want := range tests {
		assert.Equal(t, want, InferType(in), in)
	}
}
