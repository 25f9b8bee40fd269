package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/bfp-echague/firetrack/core"
	"github.com/bfp-echague/firetrack/core/rest"
	"github.com/bfp-echague/firetrack/tracker"
)

// incidentQuery joins the barangay and category the incident belongs to,
// so listings carry the related records like the single get does.
func (s *Store) incidentQuery() string {
	return fmt.Sprintf(`SELECT
		i.id, i.name, i.latitude, i.longitude, i.barangay_id,
		i.causes, i.structures_involved, i.category_id,
		i.report_time, i.response_time, i.fire_out_time, i.notes,
		i.archived, i.created_at, i.updated_at,
		b.name, b.created_at, b.updated_at,
		c.name, c.severity, c.created_at, c.updated_at
	FROM %s.incident i
	JOIN %s.barangay b ON b.id = i.barangay_id
	JOIN %s.category c ON c.id = i.category_id`, s.db.Schema, s.db.Schema, s.db.Schema)
}

func scanIncident(row interface{ Scan(...interface{}) error }) (*tracker.Incident, error) {
	var i tracker.Incident
	barangay := tracker.Barangay{}
	category := tracker.Category{}
	err := row.Scan(
		&i.ID, &i.Name, &i.Location.Latitude, &i.Location.Longitude, &i.BarangayID,
		pq.Array(&i.Causes), pq.Array(&i.StructuresInvolved), &i.CategoryID,
		&i.ReportTime, &i.ResponseTime, &i.FireOutTime, &i.Notes,
		&i.Archived, &i.CreatedAt, &i.UpdatedAt,
		&barangay.Name, &barangay.CreatedAt, &barangay.UpdatedAt,
		&category.Name, &category.Severity, &category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	barangay.ID = i.BarangayID
	category.ID = i.CategoryID
	i.Barangay = &barangay
	i.Category = &category
	return &i, nil
}

func (s *Store) readIncidents(ctx context.Context, query string, args ...interface{}) ([]tracker.Incident, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []tracker.Incident{}
	for rows.Next() {
		i, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *i)
	}
	return result, rows.Err()
}

func (s *Store) Incident(ctx context.Context, id int64) (*tracker.Incident, error) {
	row := s.db.QueryRowContext(ctx, s.incidentQuery()+" WHERE i.id = $1", id)
	i, err := scanIncident(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return i, err
}

// Incidents lists one cursor page ordered by id; cursor continuation is
// an id comparison, which also excludes the anchor row.
func (s *Store) Incidents(ctx context.Context, filter tracker.IncidentFilter, options rest.FindManyOptions) ([]tracker.Incident, error) {
	var cursorID interface{}
	if options.CursorID != nil {
		cursorID = *options.CursorID
	}
	query := s.incidentQuery() + `
	WHERE ($1 = '' OR i.name ILIKE '%' || $1 || '%')
	AND (i.archived = false OR $2)
	AND ($3::bigint IS NULL OR i.id > $3)
	ORDER BY i.id
	LIMIT $4`
	return s.readIncidents(ctx, query, filter.Search, filter.IncludeArchived, cursorID, options.Take)
}

func (s *Store) AllIncidents(ctx context.Context) ([]tracker.Incident, error) {
	return s.readIncidents(ctx, s.incidentQuery()+" ORDER BY i.id")
}

func (s *Store) CreateIncident(ctx context.Context, input tracker.IncidentInput) (*tracker.Incident, error) {
	archived := false
	if input.Archived != nil {
		archived = *input.Archived
	}
	var id int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`INSERT INTO %s.incident
		(name, latitude, longitude, barangay_id, causes, structures_involved,
		 category_id, report_time, response_time, fire_out_time, notes, archived)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING id`, s.db.Schema),
		input.Name, input.Location.Latitude, input.Location.Longitude,
		input.BarangayID, pq.Array(input.Causes), pq.Array(input.StructuresInvolved),
		input.CategoryID, input.ReportTime, input.ResponseTime, input.FireOutTime,
		input.Notes, archived).Scan(&id)
	if err != nil {
		return nil, err
	}

	i, err := s.Incident(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify("incident", core.OperationCreate, i)
	return i, nil
}

func (s *Store) UpdateIncident(ctx context.Context, id int64, patch tracker.IncidentPatch) (*tracker.Incident, error) {
	builder := newPatchBuilder()
	if patch.Name != nil {
		builder.set("name", *patch.Name)
	}
	if patch.Location != nil {
		if patch.Location.Latitude != nil {
			builder.set("latitude", *patch.Location.Latitude)
		}
		if patch.Location.Longitude != nil {
			builder.set("longitude", *patch.Location.Longitude)
		}
	}
	if patch.BarangayID != nil {
		builder.set("barangay_id", *patch.BarangayID)
	}
	if patch.Causes != nil {
		builder.set("causes", pq.Array(patch.Causes))
	}
	if patch.StructuresInvolved != nil {
		builder.set("structures_involved", pq.Array(patch.StructuresInvolved))
	}
	if patch.CategoryID != nil {
		builder.set("category_id", *patch.CategoryID)
	}
	if patch.ReportTime != nil {
		builder.set("report_time", *patch.ReportTime)
	}
	if patch.ResponseTime != nil {
		builder.set("response_time", *patch.ResponseTime)
	}
	if patch.FireOutTime != nil {
		builder.set("fire_out_time", *patch.FireOutTime)
	}
	if patch.Notes != nil {
		builder.set("notes", *patch.Notes)
	}
	if patch.Archived != nil {
		builder.set("archived", *patch.Archived)
	}

	query, args := builder.query(s.db.Schema+".incident", "id", id)
	var updatedID int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&updatedID); err != nil {
		return nil, err
	}

	i, err := s.Incident(ctx, updatedID)
	if err != nil {
		return nil, err
	}
	s.notify("incident", core.OperationUpdate, i)
	return i, nil
}
