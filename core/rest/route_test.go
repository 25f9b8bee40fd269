package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfp-echague/firetrack/core/access"
)

type fakeSessionStore struct {
	sessions map[string]*access.Session
	auths    map[string]*access.Authorization
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: map[string]*access.Session{},
		auths:    map[string]*access.Authorization{},
	}
}

func (s *fakeSessionStore) CreateSession(ctx context.Context, session access.Session) error {
	s.sessions[session.TokenHash] = &session
	return nil
}

func (s *fakeSessionStore) LookupSession(ctx context.Context, tokenHash string) (*access.Session, *access.Authorization, error) {
	session, ok := s.sessions[tokenHash]
	if !ok {
		return nil, nil, nil
	}
	return session, s.auths[tokenHash], nil
}

func (s *fakeSessionStore) RefreshSession(ctx context.Context, tokenHash string, expiresOn time.Time) error {
	if session, ok := s.sessions[tokenHash]; ok {
		session.ExpiresOn = expiresOn
	}
	return nil
}

func (s *fakeSessionStore) LogoutSession(ctx context.Context, tokenHash string) (*access.Session, *access.Authorization, error) {
	session, ok := s.sessions[tokenHash]
	if !ok {
		return nil, nil, nil
	}
	session.LoggedOut = true
	return session, s.auths[tokenHash], nil
}

func (s *fakeSessionStore) LogoutAllSessions(ctx context.Context, userID int64, exceptTokenHash string) error {
	for hash, session := range s.sessions {
		if session.UserID == userID && hash != exceptTokenHash {
			session.LoggedOut = true
		}
	}
	return nil
}

type binderFixture struct {
	router   *mux.Router
	binder   *Binder
	store    *fakeSessionStore
	sessions *access.Manager
}

func newBinderFixture(t *testing.T) *binderFixture {
	t.Helper()
	store := newFakeSessionStore()
	sessions := &access.Manager{
		Store:    store,
		Secret:   []byte("test-secret"),
		Lifetime: time.Hour,
	}
	router := mux.NewRouter()
	return &binderFixture{
		router: router,
		binder: &Binder{
			Router:   router,
			Sessions: sessions,
			Limits:   NewLimiterSet(),
			BasePath: "/api",
		},
		store:    store,
		sessions: sessions,
	}
}

// loginAs creates a session for the given privilege and returns the cookie
// the client would hold.
func (f *binderFixture) loginAs(t *testing.T, userID int64, privilege access.PrivilegeLevel) *http.Cookie {
	t.Helper()
	token, expiresOn, err := f.sessions.Issue(context.Background(), userID)
	require.NoError(t, err)
	f.store.auths[access.HashToken(token)] = &access.Authorization{
		UserID:    userID,
		Username:  "tester",
		Privilege: privilege,
	}

	w := httptest.NewRecorder()
	require.NoError(t, f.sessions.SetCookie(w, token, expiresOn))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func (f *binderFixture) serve(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)
	return w
}

func echoIDTable() *ControllerTable {
	return &ControllerTable{
		QueryParams: PageQueryParams(),
		Get: GeneralGet(func(r *http.Request) (interface{}, error) {
			return map[string]int64{"id": PathID(r)}, nil
		}),
		GetMany: GeneralGetMany(func(r *http.Request, q Query) (interface{}, error) {
			return []string{"one"}, nil
		}),
	}
}

func TestBindOpenRouteNeedsNoSession(t *testing.T) {
	f := newBinderFixture(t)
	f.binder.Bind("/thing", PermissionsNone(), echoIDTable())

	// no cookie at all; unset permission slots rank as open
	w := f.serve(httptest.NewRequest(http.MethodGet, "/api/thing", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "missingCookieSessionId")
}

func TestBindRejectsNonNumericID(t *testing.T) {
	f := newBinderFixture(t)
	f.binder.Bind("/thing", PermissionsNone(), echoIDTable())

	w := f.serve(httptest.NewRequest(http.MethodGet, "/api/thing/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "badID")
}

func TestBindParsesPathID(t *testing.T) {
	f := newBinderFixture(t)
	f.binder.Bind("/thing", PermissionsNone(), echoIDTable())

	w := f.serve(httptest.NewRequest(http.MethodGet, "/api/thing/17", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":17`)
}

func TestBindRequiresSessionCookie(t *testing.T) {
	f := newBinderFixture(t)
	f.binder.Bind("/thing", PermissionsBasicOnly(), echoIDTable())

	w := f.serve(httptest.NewRequest(http.MethodGet, "/api/thing/1", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missingCookieSessionId")
}

func TestBindRejectsForgedCookie(t *testing.T) {
	f := newBinderFixture(t)
	f.binder.Bind("/thing", PermissionsBasicOnly(), echoIDTable())

	r := httptest.NewRequest(http.MethodGet, "/api/thing/1", nil)
	r.AddCookie(&http.Cookie{Name: access.CookieName, Value: "not-a-signed-token"})
	w := f.serve(r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missingCookieSessionId")
}

func TestBindAllowsSufficientPrivilege(t *testing.T) {
	f := newBinderFixture(t)
	f.binder.Bind("/thing", PermissionsBasicOnly(), echoIDTable())
	cookie := f.loginAs(t, 1, access.PrivilegeBasic)

	r := httptest.NewRequest(http.MethodGet, "/api/thing/1", nil)
	r.AddCookie(cookie)
	w := f.serve(r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBindRejectsInsufficientPrivilege(t *testing.T) {
	f := newBinderFixture(t)
	f.binder.Bind("/thing", PermissionsAdminOnly(), echoIDTable())
	cookie := f.loginAs(t, 1, access.PrivilegeBasic)

	r := httptest.NewRequest(http.MethodGet, "/api/thing/1", nil)
	r.AddCookie(cookie)
	w := f.serve(r)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
}

func TestBindRejectsExpiredSession(t *testing.T) {
	f := newBinderFixture(t)
	f.sessions.Lifetime = -time.Hour
	f.binder.Bind("/thing", PermissionsBasicOnly(), echoIDTable())
	cookie := f.loginAs(t, 1, access.PrivilegeBasic)

	r := httptest.NewRequest(http.MethodGet, "/api/thing/1", nil)
	r.AddCookie(cookie)
	w := f.serve(r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expiredSession")
}

func TestBindValidatesQueryBeforeAuthorization(t *testing.T) {
	f := newBinderFixture(t)
	f.binder.Bind("/thing", PermissionsBasicOnly(), echoIDTable())

	// no cookie, but the broken query parameter wins
	w := f.serve(httptest.NewRequest(http.MethodGet, "/api/thing?pageSize=lots", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalidQueryParams")
}

func TestBindRateLimits(t *testing.T) {
	f := newBinderFixture(t)
	f.binder.Limits.GetLight = NewLimiter(2, time.Minute)
	f.binder.Bind("/thing", PermissionsNone(), echoIDTable())

	for i := 0; i < 2; i++ {
		w := f.serve(httptest.NewRequest(http.MethodGet, "/api/thing/1", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := f.serve(httptest.NewRequest(http.MethodGet, "/api/thing/1", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rateLimit")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestHandleFuncAppliesLimiter(t *testing.T) {
	f := newBinderFixture(t)
	f.binder.Limits.Login = NewLimiter(1, time.Minute)
	f.binder.HandleFunc(http.MethodPost, "/login", f.binder.Limits.Login,
		func(w http.ResponseWriter, r *http.Request) {
			Success(nil).Write(w)
		})

	w := f.serve(httptest.NewRequest(http.MethodPost, "/api/login", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = f.serve(httptest.NewRequest(http.MethodPost, "/api/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
