package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fixture struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestReadSeedsMissingDocument(t *testing.T) {
	s := newTestStore(t)

	initial := []fixture{{ID: "1", Name: "first"}}
	got := Read(s, "widgets", initial)
	assert.Equal(t, initial, got)

	// The initial value is persisted so the next read agrees.
	raw, found, err := s.Raw("widgets")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"1","name":"first"}]`, string(raw))
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	want := []fixture{{ID: "a", Name: "alpha"}, {ID: "b", Name: "beta"}}
	require.NoError(t, Write(s, "widgets", want))

	got := Read(s, "widgets", []fixture{})
	assert.Equal(t, want, got)
}

func TestWriteReplacesDocument(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, Write(s, "widgets", []fixture{{ID: "a"}, {ID: "b"}}))
	require.NoError(t, Write(s, "widgets", []fixture{{ID: "c"}}))

	got := Read(s, "widgets", []fixture{})
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
}

func TestReadResetsCorruptDocument(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.WriteRaw("widgets", []byte(`{"not":"a list"`)))

	initial := []fixture{{ID: "seed"}}
	got := Read(s, "widgets", initial)
	assert.Equal(t, initial, got)

	// The corrupt row was replaced, not left to fail again.
	raw, found, err := s.Raw("widgets")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"seed","name":""}]`, string(raw))
}

func TestReadResetsNullDocument(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.WriteRaw("widgets", []byte(`null`)))

	got := Read(s, "widgets", []fixture{})
	assert.NotNil(t, got)
	assert.Empty(t, got)

	raw, _, err := s.Raw("widgets")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestRawMissingRow(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.Raw("nope")
	require.NoError(t, err)
	assert.False(t, found)
}
