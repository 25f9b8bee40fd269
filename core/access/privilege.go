/*Package access provides session based authentication and
role based access control for the REST routes.
*/
package access

import (
	"fmt"

	"github.com/goccy/go-json"
)

// PrivilegeLevel is an ordered user privilege tier. Levels are compared by
// rank, not identity, so intermediate levels can be inserted later without
// touching any comparison site.
type PrivilegeLevel string

// all supported privilege levels
const (
	// PrivilegeNone requires no session at all
	PrivilegeNone PrivilegeLevel = "NONE"
	// PrivilegeBasic is the default level for logged-in users
	PrivilegeBasic PrivilegeLevel = "BASIC"
	// PrivilegeAdmin can manage users and reference data
	PrivilegeAdmin PrivilegeLevel = "ADMIN"
)

var privilegeRank = map[PrivilegeLevel]int{
	PrivilegeNone:  0,
	PrivilegeBasic: 1,
	PrivilegeAdmin: 99,
}

// Rank returns the numeric rank of the privilege level. Unknown levels
// rank below everything.
func (p PrivilegeLevel) Rank() int {
	return privilegeRank[p]
}

// Meets returns true if this privilege level ranks at least as high as min.
func (p PrivilegeLevel) Meets(min PrivilegeLevel) bool {
	return p.Rank() >= min.Rank()
}

// UnmarshalJSON is a custom JSON unmarshaller which rejects unknown levels
func (p *PrivilegeLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = PrivilegeLevel(s)
	switch *p {
	case PrivilegeBasic, PrivilegeAdmin:
		return nil
	default:
		return fmt.Errorf("%s is not a valid privilege level", s)
	}
}
