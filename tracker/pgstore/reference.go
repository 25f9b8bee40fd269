package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/bfp-echague/firetrack/core"
	"github.com/bfp-echague/firetrack/tracker"
)

// patchBuilder collects SET clauses for a partial update.
type patchBuilder struct {
	sets []string
	args []interface{}
}

func newPatchBuilder() *patchBuilder {
	return &patchBuilder{sets: []string{"updated_at = now()"}}
}

func (b *patchBuilder) set(column string, value interface{}) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

// query renders the UPDATE statement; the row id is appended as the last
// argument.
func (b *patchBuilder) query(table, returning string, id int64) (string, []interface{}) {
	args := append(b.args, id)
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(b.sets, ", "), len(args), returning), args
}

const barangayColumns = "id, name, created_at, updated_at"

func scanBarangay(row interface{ Scan(...interface{}) error }) (*tracker.Barangay, error) {
	var b tracker.Barangay
	if err := row.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) Barangay(ctx context.Context, id int64) (*tracker.Barangay, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s.barangay WHERE id = $1", barangayColumns, s.db.Schema), id)
	b, err := scanBarangay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (s *Store) Barangays(ctx context.Context, search string) ([]tracker.Barangay, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s.barangay WHERE "+searchClause+" ORDER BY name",
		barangayColumns, s.db.Schema, "name"), search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []tracker.Barangay{}
	for rows.Next() {
		b, err := scanBarangay(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	return result, rows.Err()
}

func (s *Store) CountBarangays(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT count(*) FROM %s.barangay", s.db.Schema)).Scan(&count)
	return count, err
}

func (s *Store) CreateBarangay(ctx context.Context, input tracker.BarangayInput) (*tracker.Barangay, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"INSERT INTO %s.barangay (name) VALUES ($1) RETURNING %s",
		s.db.Schema, barangayColumns), input.Name)
	b, err := scanBarangay(row)
	if err != nil {
		return nil, err
	}
	s.notify("barangay", core.OperationCreate, b)
	return b, nil
}

func (s *Store) CreateBarangays(ctx context.Context, inputs []tracker.BarangayInput) ([]tracker.Barangay, error) {
	names := make([]string, len(inputs))
	for i, input := range inputs {
		names[i] = input.Name
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"INSERT INTO %s.barangay (name) SELECT unnest($1::text[]) RETURNING %s",
		s.db.Schema, barangayColumns), pq.Array(names))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []tracker.Barangay{}
	for rows.Next() {
		b, err := scanBarangay(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.notify("barangay", core.OperationCreate, result)
	return result, nil
}

func (s *Store) UpdateBarangay(ctx context.Context, id int64, patch tracker.BarangayPatch) (*tracker.Barangay, error) {
	builder := newPatchBuilder()
	if patch.Name != nil {
		builder.set("name", *patch.Name)
	}
	query, args := builder.query(s.db.Schema+".barangay", barangayColumns, id)
	b, err := scanBarangay(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	s.notify("barangay", core.OperationUpdate, b)
	return b, nil
}

func (s *Store) DeleteBarangay(ctx context.Context, id int64) (*tracker.Barangay, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"DELETE FROM %s.barangay WHERE id = $1 RETURNING %s",
		s.db.Schema, barangayColumns), id)
	b, err := scanBarangay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.notify("barangay", core.OperationDelete, b)
	return b, nil
}

const categoryColumns = "id, name, severity, created_at, updated_at"

func scanCategory(row interface{ Scan(...interface{}) error }) (*tracker.Category, error) {
	var c tracker.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Severity, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) Category(ctx context.Context, id int64) (*tracker.Category, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s.category WHERE id = $1", categoryColumns, s.db.Schema), id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *Store) Categories(ctx context.Context, search string) ([]tracker.Category, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s.category WHERE "+searchClause+" ORDER BY name",
		categoryColumns, s.db.Schema, "name"), search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []tracker.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (s *Store) CountCategories(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT count(*) FROM %s.category", s.db.Schema)).Scan(&count)
	return count, err
}

func (s *Store) CreateCategory(ctx context.Context, input tracker.CategoryInput) (*tracker.Category, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"INSERT INTO %s.category (name, severity) VALUES ($1, $2) RETURNING %s",
		s.db.Schema, categoryColumns), input.Name, input.Severity)
	c, err := scanCategory(row)
	if err != nil {
		return nil, err
	}
	s.notify("category", core.OperationCreate, c)
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, patch tracker.CategoryPatch) (*tracker.Category, error) {
	builder := newPatchBuilder()
	if patch.Name != nil {
		builder.set("name", *patch.Name)
	}
	if patch.Severity != nil {
		builder.set("severity", *patch.Severity)
	}
	query, args := builder.query(s.db.Schema+".category", categoryColumns, id)
	c, err := scanCategory(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	s.notify("category", core.OperationUpdate, c)
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) (*tracker.Category, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"DELETE FROM %s.category WHERE id = $1 RETURNING %s",
		s.db.Schema, categoryColumns), id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.notify("category", core.OperationDelete, c)
	return c, nil
}

const causeColumns = "id, name, created_at, updated_at"

func scanCause(row interface{ Scan(...interface{}) error }) (*tracker.Cause, error) {
	var c tracker.Cause
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) Cause(ctx context.Context, id int64) (*tracker.Cause, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s.cause WHERE id = $1", causeColumns, s.db.Schema), id)
	c, err := scanCause(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *Store) Causes(ctx context.Context, search string) ([]tracker.Cause, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s.cause WHERE "+searchClause+" ORDER BY name",
		causeColumns, s.db.Schema, "name"), search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []tracker.Cause{}
	for rows.Next() {
		c, err := scanCause(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (s *Store) CreateCause(ctx context.Context, input tracker.CauseInput) (*tracker.Cause, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"INSERT INTO %s.cause (name) VALUES ($1) RETURNING %s",
		s.db.Schema, causeColumns), input.Name)
	c, err := scanCause(row)
	if err != nil {
		return nil, err
	}
	s.notify("cause", core.OperationCreate, c)
	return c, nil
}

func (s *Store) UpdateCause(ctx context.Context, id int64, patch tracker.CausePatch) (*tracker.Cause, error) {
	builder := newPatchBuilder()
	if patch.Name != nil {
		builder.set("name", *patch.Name)
	}
	query, args := builder.query(s.db.Schema+".cause", causeColumns, id)
	c, err := scanCause(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	s.notify("cause", core.OperationUpdate, c)
	return c, nil
}

func (s *Store) DeleteCause(ctx context.Context, id int64) (*tracker.Cause, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"DELETE FROM %s.cause WHERE id = $1 RETURNING %s",
		s.db.Schema, causeColumns), id)
	c, err := scanCause(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.notify("cause", core.OperationDelete, c)
	return c, nil
}
