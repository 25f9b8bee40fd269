package access

import (
	"context"
)

// contextKey is the type for context keys. Go linter does not like plain strings
type contextKey string

// the predefined context key
const (
	contextKeyAuthorization contextKey = "_authorization_"
)

/*Authorization is a context object which stores who is currently logged in.

An authorization is added to a request context by the authorization stage of
the route binder with

  ctx = auth.ContextWithAuthorization(ctx)

and retrieved by handlers and persistence closures with

  auth := AuthorizationFromContext(ctx)

Handlers use it for record ownership rules, e.g. "who is editing this user".
*/
type Authorization struct {
	UserID    int64          `json:"userId"`
	Username  string         `json:"username"`
	Privilege PrivilegeLevel `json:"privilege"`
}

// HasPrivilege returns true if the authorization meets the requested
// minimum privilege level; a nil authorization meets only PrivilegeNone.
func (a *Authorization) HasPrivilege(min PrivilegeLevel) bool {
	if a == nil {
		return min.Rank() <= PrivilegeNone.Rank()
	}
	return a.Privilege.Meets(min)
}

// ContextWithAuthorization returns a new context with this authorization added to it
func (a *Authorization) ContextWithAuthorization(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKeyAuthorization, a)
}

// AuthorizationFromContext retrieves an authorization from the context
func AuthorizationFromContext(ctx context.Context) *Authorization {
	a, ok := ctx.Value(contextKeyAuthorization).(*Authorization)
	if ok {
		return a
	}
	return nil
}
