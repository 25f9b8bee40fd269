/*Package pgstore implements the tracker persistence ports on postgres.

All tables live in one schema so several deployments can share a database.
Mutations emit a notification with the affected record after the row is
committed.
*/
package pgstore

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/bfp-echague/firetrack/core"
	"github.com/bfp-echague/firetrack/core/csql"
	"github.com/bfp-echague/firetrack/core/logger"
)

// Store implements tracker.Store and access.SessionStore on postgres.
type Store struct {
	db       *csql.DB
	notifier core.Notifier
}

// New creates a store on the given database. The notifier may be nil.
func New(db *csql.DB, notifier core.Notifier) *Store {
	s := &Store{db: db, notifier: notifier}
	s.createTables()
	return s
}

func (s *Store) createTables() {
	schema := s.db.Schema
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.barangay (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.category (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			severity INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.cause (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.account (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			privilege TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.incident (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			latitude TEXT NOT NULL,
			longitude TEXT NOT NULL,
			barangay_id BIGINT NOT NULL REFERENCES %s.barangay(id),
			causes TEXT[] NOT NULL DEFAULT '{}',
			structures_involved TEXT[] NOT NULL DEFAULT '{}',
			category_id BIGINT NOT NULL REFERENCES %s.category(id),
			report_time TIMESTAMPTZ,
			response_time TIMESTAMPTZ,
			fire_out_time TIMESTAMPTZ,
			notes TEXT,
			archived BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, schema, schema, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.session (
			token_hash TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES %s.account(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			expires_on TIMESTAMPTZ NOT NULL,
			logged_out BOOLEAN NOT NULL DEFAULT false
		);`, schema, schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS session_user_idx ON %s.session(user_id);`, schema),
	}
	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			panic(err)
		}
	}
}

func (s *Store) notify(resource string, operation core.Operation, record interface{}) {
	if s.notifier == nil {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		logger.Default().WithError(err).Warning("cannot serialize notification")
		return
	}
	s.notifier.Notify(resource, operation, payload)
}

// searchClause matches the column case-insensitively when search is set.
// An empty search matches everything.
const searchClause = `($1 = '' OR %s ILIKE '%%' || $1 || '%%')`
