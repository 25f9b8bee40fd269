package access

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bfp-echague/firetrack/core/logger"
)

// Session is the server-side record backing an opaque client-held token.
// The token itself never hits storage, only its hash does, so a database
// compromise does not expose usable tokens.
type Session struct {
	TokenHash string    `json:"-"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresOn time.Time `json:"expiresOn"`
	LoggedOut bool      `json:"loggedOut"`
}

// session validation errors
var (
	// ErrInvalidSession means the token does not belong to any session
	ErrInvalidSession = errors.New("session is invalid")
	// ErrExpiredSession means the session exists but has expired
	ErrExpiredSession = errors.New("session has expired")
	// ErrLoggedOut means the session was explicitly logged out
	ErrLoggedOut = errors.New("session has been logged out")
)

// SessionStore is the persistence port for sessions. Lookups are keyed by
// token hash. LookupSession returns nil without error when no session
// exists for the hash.
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) error
	LookupSession(ctx context.Context, tokenHash string) (*Session, *Authorization, error)
	RefreshSession(ctx context.Context, tokenHash string, expiresOn time.Time) error
	LogoutSession(ctx context.Context, tokenHash string) (*Session, *Authorization, error)
	LogoutAllSessions(ctx context.Context, userID int64, exceptTokenHash string) error
}

// Manager implements the session lifecycle on top of a SessionStore:
// issue on login, sliding-window refresh on every authorized request,
// logout and mass logout after password changes.
type Manager struct {
	// Store is the session persistence port. This is mandatory.
	Store SessionStore
	// Secret signs the session cookie. This is mandatory.
	Secret []byte
	// Lifetime is the sliding session lifetime.
	Lifetime time.Duration

	// now can be overridden in tests
	now func() time.Time
}

func (m *Manager) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

// HashToken returns the one-way hash under which a session token is stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Issue creates a new session for the user and returns the opaque token
// together with its expiry.
func (m *Manager) Issue(ctx context.Context, userID int64) (string, time.Time, error) {
	token := uuid.NewString()
	now := m.clock()
	expiresOn := now.Add(m.Lifetime)
	err := m.Store.CreateSession(ctx, Session{
		TokenHash: HashToken(token),
		UserID:    userID,
		CreatedAt: now,
		ExpiresOn: expiresOn,
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresOn, nil
}

// Validate resolves a token to its session and the owning user's
// authorization. It fails with ErrInvalidSession, ErrExpiredSession or
// ErrLoggedOut; any other error is a storage failure.
func (m *Manager) Validate(ctx context.Context, token string) (*Session, *Authorization, error) {
	session, auth, err := m.Store.LookupSession(ctx, HashToken(token))
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, ErrInvalidSession
	}
	if session.ExpiresOn.Before(m.clock()) {
		return nil, nil, ErrExpiredSession
	}
	if session.LoggedOut {
		return nil, nil, ErrLoggedOut
	}
	return session, auth, nil
}

// Refresh extends the session's expiry by the configured lifetime. Sessions
// are sliding windows, every authorized request refreshes them. A refresh
// failure does not fail the request, it only shortens the session.
func (m *Manager) Refresh(ctx context.Context, token string) {
	err := m.Store.RefreshSession(ctx, HashToken(token), m.clock().Add(m.Lifetime))
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warning("cannot refresh session")
	}
}

// Logout marks the session as logged out. Logout is idempotent.
func (m *Manager) Logout(ctx context.Context, token string) (*Session, *Authorization, error) {
	session, auth, err := m.Store.LogoutSession(ctx, HashToken(token))
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, ErrInvalidSession
	}
	return session, auth, nil
}

// LogoutAll invalidates every session of the user, except the session
// behind exceptToken if one is given. This forces re-authentication
// everywhere after a password change.
func (m *Manager) LogoutAll(ctx context.Context, userID int64, exceptToken string) error {
	exceptHash := ""
	if exceptToken != "" {
		exceptHash = HashToken(exceptToken)
	}
	return m.Store.LogoutAllSessions(ctx, userID, exceptHash)
}
