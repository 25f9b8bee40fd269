/*Package tracker implements the fire-incident tracking resources: the
reference data (barangays, categories, causes), the incident reports
themselves and the user accounts, each exposed as a controller table for
the route binder.
*/
package tracker

import (
	"time"

	"github.com/bfp-echague/firetrack/core/access"
)

// Barangay is one administrative subdivision of the municipality.
type Barangay struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Category is a severity tier an incident is classified into.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Severity  int       `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Cause is a reference cause of fire, e.g. "Electrical".
type Cause struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Location is the coordinate pair of an incident. The axes travel as
// strings to avoid any floating point rounding on the wire; they are
// validated to be parseable decimals on the way in.
type Location struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Incident is one fire-incident report. Incidents are never deleted,
// only archived.
type Incident struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	Location           Location   `json:"location"`
	BarangayID         int64      `json:"barangayId"`
	Barangay           *Barangay  `json:"barangay,omitempty"`
	Causes             []string   `json:"causes"`
	StructuresInvolved []string   `json:"structuresInvolved"`
	CategoryID         int64      `json:"categoryId"`
	Category           *Category  `json:"category,omitempty"`
	ReportTime         *time.Time `json:"reportTime"`
	ResponseTime       *time.Time `json:"responseTime"`
	FireOutTime        *time.Time `json:"fireOutTime"`
	Notes              *string    `json:"notes"`
	Archived           bool       `json:"archived"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// User is an account that can log in. The password hash never leaves
// the process.
type User struct {
	ID        int64                  `json:"id"`
	Username  string                 `json:"username"`
	Email     string                 `json:"email"`
	Privilege access.PrivilegeLevel  `json:"privilege"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`

	PasswordHash string `json:"-"`
}

// input shapes for creates; these mirror the resources' create schemas
// and are unmarshalled from already schema-validated bodies

// BarangayInput is the create shape of a barangay.
type BarangayInput struct {
	Name string `json:"name"`
}

// CategoryInput is the create shape of a category.
type CategoryInput struct {
	Name     string `json:"name"`
	Severity int    `json:"severity"`
}

// CauseInput is the create shape of a cause.
type CauseInput struct {
	Name string `json:"name"`
}

// IncidentInput is the create shape of an incident.
type IncidentInput struct {
	Name               string     `json:"name"`
	Location           Location   `json:"location"`
	BarangayID         int64      `json:"barangayId"`
	Causes             []string   `json:"causes"`
	StructuresInvolved []string   `json:"structuresInvolved"`
	CategoryID         int64      `json:"categoryId"`
	ReportTime         *time.Time `json:"reportTime"`
	ResponseTime       *time.Time `json:"responseTime"`
	FireOutTime        *time.Time `json:"fireOutTime"`
	Notes              *string    `json:"notes"`
	Archived           *bool      `json:"archived"`
}

// UserInput is the create shape of a user. The plain password is hashed
// before it reaches storage.
type UserInput struct {
	Username  string                `json:"username"`
	Email     string                `json:"email"`
	Password  string                `json:"password"`
	Privilege access.PrivilegeLevel `json:"privilege"`
}

// patch shapes for partial updates; a nil field means "leave unchanged"

// BarangayPatch is the partial update shape of a barangay.
type BarangayPatch struct {
	Name *string `json:"name"`
}

// CategoryPatch is the partial update shape of a category.
type CategoryPatch struct {
	Name     *string `json:"name"`
	Severity *int    `json:"severity"`
}

// CausePatch is the partial update shape of a cause.
type CausePatch struct {
	Name *string `json:"name"`
}

// LocationPatch is the partial update shape of an incident's location.
type LocationPatch struct {
	Latitude  *string `json:"latitude"`
	Longitude *string `json:"longitude"`
}

// IncidentPatch is the partial update shape of an incident.
type IncidentPatch struct {
	Name               *string        `json:"name"`
	Location           *LocationPatch `json:"location"`
	BarangayID         *int64         `json:"barangayId"`
	Causes             []string       `json:"causes"`
	StructuresInvolved []string       `json:"structuresInvolved"`
	CategoryID         *int64         `json:"categoryId"`
	ReportTime         *time.Time     `json:"reportTime"`
	ResponseTime       *time.Time     `json:"responseTime"`
	FireOutTime        *time.Time     `json:"fireOutTime"`
	Notes              *string        `json:"notes"`
	Archived           *bool          `json:"archived"`
}

// UserPatch is the partial update shape of a user.
type UserPatch struct {
	Username  *string                `json:"username"`
	Email     *string                `json:"email"`
	Password  *string                `json:"password"`
	Privilege *access.PrivilegeLevel `json:"privilege"`
}
