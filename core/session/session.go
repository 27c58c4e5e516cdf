package session

import (
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// Roles
const (
	RoleAdmin   = "ADMIN"
	RoleStudent = "STUDENT"
)

var (
	// errors
	ErrNoSession = errors.New("not logged in")
)

// Session is the authenticated identity held between invocations.
type Session struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

func (s Session) IsZero() bool { return s.Token == "" }

// IsAdmin gates admin-only actions in the client. It is a UX check only; the API enforces roles.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// Claims are the token claims the API signs.
type Claims struct {
	jwt.StandardClaims
	Role string `json:"role,omitempty"`
}

// ParseClaims decodes the token claims without verifying the signature, the client holds no key.
func ParseClaims(token string) (*Claims, error) {
	claims := new(Claims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, "parsing token")
	}
	return claims, nil
}

// ExpiresAt returns the token expiry, or the zero time when the token carries none.
func (s Session) ExpiresAt() time.Time {
	claims, err := ParseClaims(s.Token)
	if err != nil || claims.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(claims.ExpiresAt, 0)
}

// Store persists the session between invocations.
type Store interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// Manager owns the current session and is handed explicitly to whoever needs it.
type Manager struct {
	store Store

	mu  sync.RWMutex
	cur Session
}

// NewManager loads any persisted session from store.
func NewManager(store Store) (*Manager, error) {
	sess, err := store.Load()
	if err != nil {
		return nil, errors.Wrap(err, "loading session")
	}
	return &Manager{store: store, cur: sess}, nil
}

func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

// Token returns the bearer token, empty when logged out.
func (m *Manager) Token() string {
	return m.Current().Token
}

func (m *Manager) LoggedIn() bool {
	return !m.Current().IsZero()
}

func (m *Manager) IsAdmin() bool {
	return m.Current().IsAdmin()
}

// Begin replaces the current session and persists it.
func (m *Manager) Begin(sess Session) error {
	if sess.IsZero() {
		return ErrNoSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(sess); err != nil {
		return errors.Wrap(err, "saving session")
	}
	m.cur = sess
	return nil
}

// End forgets the current session. The in-memory session is cleared even if the store fails.
func (m *Manager) End() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur = Session{}
	return errors.Wrap(m.store.Clear(), "clearing session")
}
