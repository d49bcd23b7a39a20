package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_SetAndGet(t *testing.T) {
	st := New(WithPath(t.TempDir()))
	assert.NoError(t, st.Open())
	defer st.Close()

	assert.NoError(t, st.Set([]byte("key"), []byte("value")))

	v, err := st.Get([]byte("key"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("value"), v)
}

func TestStore_GetMissingKey(t *testing.T) {
	st := New(WithPath(t.TempDir()))
	assert.NoError(t, st.Open())
	defer st.Close()

	_, err := st.Get([]byte("never-set"))
	assert.Equal(t, ErrKeyNotFound, err)
}

func TestStore_UseBeforeOpen(t *testing.T) {
	st := New(WithPath(t.TempDir()))

	assert.Equal(t, ErrNotOpen, st.Set([]byte("k"), []byte("v")))
	_, err := st.Get([]byte("k"))
	assert.Equal(t, ErrNotOpen, err)
}

func TestStore_ValuesSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	st := New(WithPath(dir))
	assert.NoError(t, st.Open())
	assert.NoError(t, st.SetString("drive/state", "enabled"))
	assert.NoError(t, st.Close())

	reopened := New(WithPath(dir))
	assert.NoError(t, reopened.Open())
	defer reopened.Close()

	v, err := reopened.Get([]byte("drive/state"))
	assert.NoError(t, err)
	assert.Equal(t, "enabled", string(v))
}

func TestStore_OpenIsIdempotent(t *testing.T) {
	st := New(WithPath(t.TempDir()))
	assert.NoError(t, st.Open())
	assert.NoError(t, st.Open())
	assert.True(t, st.IsOpen())
	assert.NoError(t, st.Close())
	assert.False(t, st.IsOpen())
}
