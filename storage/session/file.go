package sessionstore

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/rosterdash/core/session"
)

// FileStore keeps the session in a JSON file readable only by the current user.
type FileStore struct {
	path string
}

var _ session.Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (st *FileStore) Path() string { return st.path }

// Load returns the zero Session when no session was saved.
func (st *FileStore) Load() (session.Session, error) {
	var sess session.Session
	data, err := ioutil.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return sess, nil
		}
		return sess, errors.Wrap(err, "reading session file")
	}
	if len(data) == 0 {
		return sess, nil
	}
	if err = json.Unmarshal(data, &sess); err != nil {
		return session.Session{}, errors.Wrap(err, "decoding session file")
	}
	return sess, nil
}

func (st *FileStore) Save(sess session.Session) error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0o700); err != nil {
		return errors.Wrap(err, "creating session dir")
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}

	// write then rename so a crash never leaves half a session behind
	tmp := st.path + ".tmp"
	if err = ioutil.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "writing session file")
	}
	return errors.Wrap(os.Rename(tmp, st.path), "replacing session file")
}

func (st *FileStore) Clear() error {
	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session file")
	}
	return nil
}
