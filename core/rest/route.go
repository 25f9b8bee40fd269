package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/bfp-echague/firetrack/core/access"
	"github.com/bfp-echague/firetrack/core/logger"
)

// PermissionSet maps each operation slot of a controller table to the
// minimum privilege level the route binder enforces for it.
type PermissionSet struct {
	Get     access.PrivilegeLevel
	GetMany access.PrivilegeLevel
	Post    access.PrivilegeLevel
	PutMany access.PrivilegeLevel
	Patch   access.PrivilegeLevel
	Delete  access.PrivilegeLevel
}

// PermissionsNone leaves every operation open.
func PermissionsNone() PermissionSet {
	return PermissionSet{}
}

// PermissionsBasicOnly requires a logged-in user for every operation.
func PermissionsBasicOnly() PermissionSet {
	return PermissionSet{
		Get:     access.PrivilegeBasic,
		GetMany: access.PrivilegeBasic,
		Post:    access.PrivilegeBasic,
		PutMany: access.PrivilegeBasic,
		Patch:   access.PrivilegeBasic,
		Delete:  access.PrivilegeBasic,
	}
}

// PermissionsAdminOnly requires an admin for every operation.
func PermissionsAdminOnly() PermissionSet {
	return PermissionSet{
		Get:     access.PrivilegeAdmin,
		GetMany: access.PrivilegeAdmin,
		Post:    access.PrivilegeAdmin,
		PutMany: access.PrivilegeAdmin,
		Patch:   access.PrivilegeAdmin,
		Delete:  access.PrivilegeAdmin,
	}
}

// PermissionsEditAdminOnly lets any logged-in user read, but only admins mutate.
func PermissionsEditAdminOnly() PermissionSet {
	return PermissionSet{
		Get:     access.PrivilegeBasic,
		GetMany: access.PrivilegeBasic,
		Post:    access.PrivilegeAdmin,
		PutMany: access.PrivilegeAdmin,
		Patch:   access.PrivilegeAdmin,
		Delete:  access.PrivilegeAdmin,
	}
}

// Binder wires controller tables and permission sets into concrete HTTP
// routes. All collaborators are injected at startup; the binder holds no
// hidden global state.
type Binder struct {
	// Router is a mux router. This is mandatory.
	Router *mux.Router
	// Sessions validates and refreshes session cookies. This is mandatory
	// unless every bound permission is PrivilegeNone.
	Sessions *access.Manager
	// Limits carries the per-route-class request budgets. This is mandatory.
	Limits *LimiterSet
	// BasePath is prepended to every bound route, typically "/api".
	BasePath string
}

// stage is one step of the fixed request pipeline. A stage either enriches
// the request (typed path id, authorization, coerced query) or fails it
// with an error that becomes the response. Stages run in declaration
// order; there is no other middleware mechanism.
type stage func(r *http.Request) (*http.Request, error)

func (b *Binder) run(stages []stage, handler http.HandlerFunc) http.Handler {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method)
		for _, s := range stages {
			next, err := s(r)
			if err != nil {
				WriteError(w, r, err)
				return
			}
			r = next
		}
		handler(w, r)
	})
	return handlers.CompressHandler(h)
}

// Bind adds the HTTP method/path pairs for one resource: one route per
// filled slot of the controller table. The pipeline order per route is
// fixed and must not change: shape validation (path id or query params)
// precedes authorization precedes throttling precedes the handler, so
// malformed or unauthorized requests never consume rate budget and never
// reach persistence.
func (b *Binder) Bind(resource string, permits PermissionSet, table *ControllerTable) {
	rlog := logger.Default()
	listRoute := b.BasePath + resource
	itemRoute := b.BasePath + resource + "/{id}"

	if table.Get != nil {
		rlog.Debugln("handle route:", itemRoute, "GET")
		b.Router.Handle(itemRoute, b.run(
			[]stage{pathID, b.authorize(permits.Get), b.limit(b.Limits.GetLight)},
			table.Get,
		)).Methods(http.MethodGet)
	}

	if table.GetMany != nil {
		rlog.Debugln("handle route:", listRoute, "GET")
		b.Router.Handle(listRoute, b.run(
			[]stage{queryStage(table.QueryParams), b.authorize(permits.GetMany), b.limit(b.Limits.GetLight)},
			withQuery(table.GetMany),
		)).Methods(http.MethodGet)
	}

	if table.Post != nil {
		rlog.Debugln("handle route:", listRoute, "POST")
		b.Router.Handle(listRoute, b.run(
			[]stage{b.authorize(permits.Post), b.limit(b.Limits.PostHeavy)},
			table.Post,
		)).Methods(http.MethodPost)
	}

	if table.PutMany != nil {
		rlog.Debugln("handle route:", listRoute, "PUT")
		b.Router.Handle(listRoute, b.run(
			[]stage{queryStage(table.QueryParams), b.authorize(permits.PutMany), b.limit(b.Limits.GetLight)},
			withQuery(table.PutMany),
		)).Methods(http.MethodPut)
	}

	if table.Patch != nil {
		rlog.Debugln("handle route:", itemRoute, "PATCH")
		b.Router.Handle(itemRoute, b.run(
			[]stage{pathID, b.authorize(permits.Patch), b.limit(b.Limits.Patch)},
			table.Patch,
		)).Methods(http.MethodPatch)
	}

	if table.Delete != nil {
		rlog.Debugln("handle route:", itemRoute, "DELETE")
		b.Router.Handle(itemRoute, b.run(
			[]stage{pathID, b.authorize(permits.Delete), b.limit(b.Limits.Delete)},
			table.Delete,
		)).Methods(http.MethodDelete)
	}
}

// HandleFunc binds a standalone route outside the controller table scheme,
// e.g. login and logout, with only a rate limit in front of the handler.
func (b *Binder) HandleFunc(method, route string, limiter *Limiter, handler http.HandlerFunc) {
	logger.Default().Debugln("handle route:", b.BasePath+route, method)
	b.Router.Handle(b.BasePath+route, b.run(
		[]stage{b.limit(limiter)},
		handler,
	)).Methods(method)
}

// the predefined context keys of the pipeline stages
const (
	contextKeyPathID contextKey = "_path_id_"
	contextKeyQuery  contextKey = "_query_"
)

type contextKey string

// PathID returns the parsed integer path id for the request. Only handlers
// bound on an item route have one.
func PathID(r *http.Request) int64 {
	id, _ := r.Context().Value(contextKeyPathID).(int64)
	return id
}

func pathID(r *http.Request) (*http.Request, error) {
	raw, ok := mux.Vars(r)["id"]
	if !ok || raw == "" {
		return nil, NewError("noId", "You did not specify an ID.")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, NewError("badID", "Your ID is not valid.")
	}
	return r.WithContext(context.WithValue(r.Context(), contextKeyPathID, id)), nil
}

func (b *Binder) authorize(min access.PrivilegeLevel) stage {
	return func(r *http.Request) (*http.Request, error) {
		// compare by rank: the zero-value level of an unset permission
		// slot is open, same as an explicit PrivilegeNone
		if min.Rank() <= access.PrivilegeNone.Rank() {
			return r, nil
		}

		token, err := b.Sessions.TokenFromRequest(r)
		if err != nil {
			return nil, err
		}
		_, auth, err := b.Sessions.Validate(r.Context(), token)
		if err != nil {
			return nil, err
		}
		b.Sessions.Refresh(r.Context(), token)

		if !auth.HasPrivilege(min) {
			return nil, ErrUnauthorized
		}

		ctx, _ := logger.ContextWithLoggerIdentity(r.Context(), auth.Username)
		ctx = auth.ContextWithAuthorization(ctx)
		return r.WithContext(ctx), nil
	}
}

func (b *Binder) limit(limiter *Limiter) stage {
	return func(r *http.Request) (*http.Request, error) {
		if limiter.Allow(clientKey(r)) {
			return r, nil
		}
		err := NewStatusError(http.StatusTooManyRequests, "rateLimit",
			"You have been rate limited. Please retry the request again later.")
		err.retryAfter = limiter.retryAfter
		return nil, err
	}
}

func queryStage(params []QueryParam) stage {
	return func(r *http.Request) (*http.Request, error) {
		query, violations := parseQuery(params, r.URL.Query())
		if len(violations) > 0 {
			return nil, NewErrorInfo("invalidQueryParams", "Your query parameters are invalid!", violations)
		}
		return r.WithContext(context.WithValue(r.Context(), contextKeyQuery, query)), nil
	}
}

func withQuery(handler QueryHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, _ := r.Context().Value(contextKeyQuery).(Query)
		handler(w, r, query)
	}
}
