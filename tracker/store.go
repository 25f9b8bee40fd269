package tracker

import (
	"context"

	"github.com/bfp-echague/firetrack/core/rest"
)

// IncidentFilter narrows the incident listing.
type IncidentFilter struct {
	// Search matches incident names case-insensitively.
	Search string
	// IncludeArchived keeps archived incidents in the listing.
	IncludeArchived bool
}

// Store is the persistence port for all tracked resources.
//
// Lookups and deletes return nil without error when the id does not
// resolve; updates on a missing row fail with csql.ErrNoRows. Delete
// handlers translate the nil into a not-found response. All listings are
// ordered stably: reference data by name, incidents and users by id, which
// keeps the incident cursor monotonic.
type Store interface {
	Barangay(ctx context.Context, id int64) (*Barangay, error)
	Barangays(ctx context.Context, search string) ([]Barangay, error)
	CountBarangays(ctx context.Context) (int, error)
	CreateBarangay(ctx context.Context, input BarangayInput) (*Barangay, error)
	CreateBarangays(ctx context.Context, inputs []BarangayInput) ([]Barangay, error)
	UpdateBarangay(ctx context.Context, id int64, patch BarangayPatch) (*Barangay, error)
	DeleteBarangay(ctx context.Context, id int64) (*Barangay, error)

	Category(ctx context.Context, id int64) (*Category, error)
	Categories(ctx context.Context, search string) ([]Category, error)
	CountCategories(ctx context.Context) (int, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, patch CategoryPatch) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) (*Category, error)

	Cause(ctx context.Context, id int64) (*Cause, error)
	Causes(ctx context.Context, search string) ([]Cause, error)
	CreateCause(ctx context.Context, input CauseInput) (*Cause, error)
	UpdateCause(ctx context.Context, id int64, patch CausePatch) (*Cause, error)
	DeleteCause(ctx context.Context, id int64) (*Cause, error)

	Incident(ctx context.Context, id int64) (*Incident, error)
	Incidents(ctx context.Context, filter IncidentFilter, options rest.FindManyOptions) ([]Incident, error)
	AllIncidents(ctx context.Context) ([]Incident, error)
	CreateIncident(ctx context.Context, input IncidentInput) (*Incident, error)
	UpdateIncident(ctx context.Context, id int64, patch IncidentPatch) (*Incident, error)

	User(ctx context.Context, id int64) (*User, error)
	Users(ctx context.Context, search string) ([]User, error)
	UserByUsername(ctx context.Context, username string) (*User, error)
	CountAdmins(ctx context.Context) (int, error)
	CreateUser(ctx context.Context, input UserInput, passwordHash string) (*User, error)
	UpdateUser(ctx context.Context, id int64, patch UserPatch, passwordHash string) (*User, error)
	DeleteUser(ctx context.Context, id int64) (*User, error)
}
