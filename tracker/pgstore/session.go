package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bfp-echague/firetrack/core/access"
)

// The Store doubles as the access.SessionStore; sessions resolve their
// owning user's authorization in the same query.

func (s *Store) CreateSession(ctx context.Context, session access.Session) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s.session (token_hash, user_id, created_at, expires_on, logged_out)
		VALUES ($1, $2, $3, $4, $5)`, s.db.Schema),
		session.TokenHash, session.UserID, session.CreatedAt, session.ExpiresOn, session.LoggedOut)
	return err
}

func (s *Store) lookupSession(ctx context.Context, tokenHash string) (*access.Session, *access.Authorization, error) {
	var session access.Session
	var auth access.Authorization
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT se.token_hash, se.user_id, se.created_at, se.expires_on, se.logged_out,
			a.username, a.privilege
		FROM %s.session se JOIN %s.account a ON a.id = se.user_id
		WHERE se.token_hash = $1`, s.db.Schema, s.db.Schema), tokenHash).Scan(
		&session.TokenHash, &session.UserID, &session.CreatedAt, &session.ExpiresOn,
		&session.LoggedOut, &auth.Username, &auth.Privilege)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	auth.UserID = session.UserID
	return &session, &auth, nil
}

func (s *Store) LookupSession(ctx context.Context, tokenHash string) (*access.Session, *access.Authorization, error) {
	return s.lookupSession(ctx, tokenHash)
}

func (s *Store) RefreshSession(ctx context.Context, tokenHash string, expiresOn time.Time) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"UPDATE %s.session SET expires_on = $2 WHERE token_hash = $1", s.db.Schema),
		tokenHash, expiresOn)
	return err
}

func (s *Store) LogoutSession(ctx context.Context, tokenHash string) (*access.Session, *access.Authorization, error) {
	result, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"UPDATE %s.session SET logged_out = true WHERE token_hash = $1", s.db.Schema),
		tokenHash)
	if err != nil {
		return nil, nil, err
	}
	if count, err := result.RowsAffected(); err != nil || count == 0 {
		return nil, nil, err
	}
	return s.lookupSession(ctx, tokenHash)
}

func (s *Store) LogoutAllSessions(ctx context.Context, userID int64, exceptTokenHash string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"UPDATE %s.session SET logged_out = true WHERE user_id = $1 AND token_hash <> $2",
		s.db.Schema), userID, exceptTokenHash)
	return err
}
