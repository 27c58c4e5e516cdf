package sessionstore

import (
	"sync"

	"github.com/trezcool/rosterdash/core/session"
)

// MemoryStore keeps the session for the lifetime of the process only.
type MemoryStore struct {
	mutex sync.RWMutex
	sess  session.Session
	saves int
}

var _ session.Store = (*MemoryStore)(nil)

func NewMemoryStore(initial ...session.Session) *MemoryStore {
	st := new(MemoryStore)
	if len(initial) > 0 {
		st.sess = initial[0]
	}
	return st
}

func (st *MemoryStore) Load() (session.Session, error) {
	st.mutex.RLock()
	defer st.mutex.RUnlock()
	return st.sess, nil
}

func (st *MemoryStore) Save(sess session.Session) error {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.sess = sess
	st.saves++
	return nil
}

func (st *MemoryStore) Clear() error {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.sess = session.Session{}
	return nil
}

// Saves counts the successful Save calls.
func (st *MemoryStore) Saves() int {
	st.mutex.RLock()
	defer st.mutex.RUnlock()
	return st.saves
}
