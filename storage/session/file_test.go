package sessionstore

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rosterdash/core/session"
)

func TestFileStore(t *testing.T) {
	dir, err := ioutil.TempDir("", "rosterdash")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	st := NewFileStore(filepath.Join(dir, "nested", "session.json"))

	// nothing saved yet
	sess, err := st.Load()
	require.NoError(t, err)
	assert.True(t, sess.IsZero())

	want := session.Session{Token: "tkn", Role: session.RoleAdmin, Username: "admin"}
	require.NoError(t, st.Save(want))

	fi, err := os.Stat(st.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	// a new store on the same path sees the session (i.e. it survives a restart)
	got, err := NewFileStore(st.Path()).Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, st.Clear())
	require.NoError(t, st.Clear()) // clearing twice is fine
	sess, err = st.Load()
	require.NoError(t, err)
	assert.True(t, sess.IsZero())
}

func TestFileStore_Corrupted(t *testing.T) {
	dir, err := ioutil.TempDir("", "rosterdash")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "session.json")
	require.NoError(t, ioutil.WriteFile(path, []byte("{not json"), 0o600))

	_, err = NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore(session.Session{Token: "a"})
	sess, _ := st.Load()
	assert.Equal(t, "a", sess.Token)

	_ = st.Save(session.Session{Token: "b"})
	sess, _ = st.Load()
	assert.Equal(t, "b", sess.Token)
	assert.Equal(t, 1, st.Saves())

	_ = st.Clear()
	sess, _ = st.Load()
	assert.True(t, sess.IsZero())
}
