package gateway

import (
	"sync"

	"github.com/gridgate/server/internal/net"
)

// SessionStore maps connected account ids to their client sessions. The
// Game process addresses players by account id, so every fan-out goes
// through this table.
type SessionStore struct {
	mu        sync.RWMutex
	byAccount map[string]*net.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{byAccount: make(map[string]*net.Session)}
}

// Bind claims an account id for a session. Returns false when another live
// session already holds it.
func (st *SessionStore) Bind(accountID string, sess *net.Session) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, taken := st.byAccount[accountID]; taken {
		return false
	}
	st.byAccount[accountID] = sess
	return true
}

// Get returns the session for an account id, or nil.
func (st *SessionStore) Get(accountID string) *net.Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.byAccount[accountID]
}

// Remove unbinds accountID only if sess still owns it, so a stale
// disconnect cannot evict a newer session for the same account.
func (st *SessionStore) Remove(accountID string, sess *net.Session) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.byAccount[accountID] != sess {
		return false
	}
	delete(st.byAccount, accountID)
	return true
}

// Each calls fn for every bound session. fn must not call back into the
// store.
func (st *SessionStore) Each(fn func(accountID string, sess *net.Session)) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for id, sess := range st.byAccount {
		fn(id, sess)
	}
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.byAccount)
}
