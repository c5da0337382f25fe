package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadAndAccess(t *testing.T) {
	s := NewStore([]string{"id", "age"})
	src := []Row{{"id": 1, "age": 28}, {"id": 2, "age": 26}}
	s.Load(src)

	src[0]["age"] = 99
	v, err := s.Get("age", 0)
	require.NoError(t, err)
	assert.Equal(t, 28, v, "store keeps its own copy")
	assert.Equal(t, s.Len(), len(s.meta))

	s.Append(Row{"id": 3})
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, s.Len(), len(s.meta))
	v, err = s.Get("age", 2)
	require.NoError(t, err)
	assert.Nil(t, v, "missing fields read as nil")
}

func TestStore_Errors(t *testing.T) {
	s := NewStore([]string{"id"})
	s.Load([]Row{{"id": 1}})

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"get unknown column", func() error { _, err := s.Get("nope", 0); return err }, ErrUnknownColumn},
		{"get row out of range", func() error { _, err := s.Get("id", 5); return err }, ErrRowOutOfRange},
		{"set negative row", func() error { return s.Set("id", -1, 1) }, ErrRowOutOfRange},
		{"meta unknown column", func() error { _, err := s.Meta(0, "nope"); return err }, ErrUnknownColumn},
		{"delete out of range", func() error { return s.Delete(1) }, ErrRowOutOfRange},
		{"move out of range", func() error { return s.Move(0, 3) }, ErrRowOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var cellErr *CellError
			assert.True(t, errors.As(err, &cellErr))
		})
	}

	v, err := s.Get("id", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, v, "failed calls leave data unchanged")
}

func TestStore_CommitTracksMetadata(t *testing.T) {
	s := NewStore([]string{"id", "age"})
	s.Load([]Row{{"id": 1, "age": 28}})

	change, err := s.Commit("age", 0, 45)
	require.NoError(t, err)
	assert.Equal(t, 28, change.Old)
	assert.Equal(t, 45, change.New)
	assert.Equal(t, Row{"id": 1, "age": 45}, change.Values)

	m, err := s.Meta(0, "age")
	require.NoError(t, err)
	assert.True(t, m.Changed)
	assert.Equal(t, 28, m.LastValue)

	m, err = s.Meta(0, "id")
	require.NoError(t, err)
	assert.False(t, m.Changed)

	require.Len(t, s.Changes(), 1)
	s.ClearChanges()
	assert.Empty(t, s.Changes())
}

func TestStore_ReorderKeepsMetadataAligned(t *testing.T) {
	s := NewStore([]string{"id"})
	s.Load([]Row{{"id": 1}, {"id": 2}, {"id": 3}, {"id": 4}})
	_, err := s.Commit("id", 0, 10)
	require.NoError(t, err)

	ids := func() []any {
		out := []any{}
		for i := range s.Len() {
			v, _ := s.Get("id", i)
			out = append(out, v)
		}
		return out
	}

	require.NoError(t, s.Move(0, 2))
	assert.Equal(t, []any{2, 3, 10, 4}, ids())
	m, _ := s.Meta(2, "id")
	assert.True(t, m.Changed, "metadata travels with its row")

	s.Permute([]int{3, 2, 1, 0})
	assert.Equal(t, []any{4, 10, 3, 2}, ids())
	m, _ = s.Meta(1, "id")
	assert.True(t, m.Changed)

	require.NoError(t, s.Delete(1))
	assert.Equal(t, []any{4, 3, 2}, ids())
	assert.Equal(t, s.Len(), len(s.meta))
	assert.Empty(t, s.Changes())
}
