package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bfp-echague/firetrack/core"
	"github.com/bfp-echague/firetrack/core/access"
	"github.com/bfp-echague/firetrack/tracker"
)

const userColumns = "id, username, email, password_hash, privilege, created_at, updated_at"

func scanUser(row interface{ Scan(...interface{}) error }) (*tracker.User, error) {
	var u tracker.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Privilege,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) User(ctx context.Context, id int64) (*tracker.User, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s.account WHERE id = $1", userColumns, s.db.Schema), id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (s *Store) Users(ctx context.Context, search string) ([]tracker.User, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s.account WHERE "+searchClause+" ORDER BY id",
		userColumns, s.db.Schema, "username"), search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []tracker.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	return result, rows.Err()
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*tracker.User, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s.account WHERE username = $1", userColumns, s.db.Schema), username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT count(*) FROM %s.account WHERE privilege = $1", s.db.Schema),
		string(access.PrivilegeAdmin)).Scan(&count)
	return count, err
}

func (s *Store) CreateUser(ctx context.Context, input tracker.UserInput, passwordHash string) (*tracker.User, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`INSERT INTO %s.account (username, email, password_hash, privilege)
		VALUES ($1, $2, $3, $4) RETURNING %s`, s.db.Schema, userColumns),
		input.Username, input.Email, passwordHash, string(input.Privilege))
	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	s.notify("user", core.OperationCreate, u)
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, id int64, patch tracker.UserPatch, passwordHash string) (*tracker.User, error) {
	builder := newPatchBuilder()
	if patch.Username != nil {
		builder.set("username", *patch.Username)
	}
	if patch.Email != nil {
		builder.set("email", *patch.Email)
	}
	if patch.Password != nil {
		builder.set("password_hash", passwordHash)
	}
	if patch.Privilege != nil {
		builder.set("privilege", string(*patch.Privilege))
	}
	query, args := builder.query(s.db.Schema+".account", userColumns, id)
	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	s.notify("user", core.OperationUpdate, u)
	return u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) (*tracker.User, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"DELETE FROM %s.account WHERE id = $1 RETURNING %s",
		s.db.Schema, userColumns), id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.notify("user", core.OperationDelete, u)
	return u, nil
}
