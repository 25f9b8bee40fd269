package access

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// CookieName is the cookie key under which the signed session token travels
const CookieName = "sessionId"

// ErrMissingCookie means the request carries no valid session cookie. A
// cookie with a broken signature counts as missing, the client never forged
// a session, it just does not have one.
var ErrMissingCookie = errors.New("missing session cookie")

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SetCookie wraps the session token into a signed JWT and sets it as a
// httpOnly, secure cookie.
func (m *Manager) SetCookie(w http.ResponseWriter, token string, expiresOn time.Time) error {
	claims := sessionClaims{
		SessionID: token,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresOn),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expiresOn,
		HttpOnly: true,
		Secure:   true,
	})
	return nil
}

// ClearCookie removes the session cookie from the client.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
	})
}

// TokenFromRequest extracts and verifies the session token from the
// request's session cookie. It returns ErrMissingCookie if the cookie is
// absent or its signature does not verify.
func (m *Manager) TokenFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrMissingCookie
	}

	// expiry is decided by the session store, not by the claim
	claims := sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !token.Valid || claims.SessionID == "" {
		return "", ErrMissingCookie
	}
	return claims.SessionID, nil
}
