package tracker

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/bfp-echague/firetrack/core/access"
	"github.com/bfp-echague/firetrack/core/rest"
	"github.com/bfp-echague/firetrack/core/schema"
)

var loginUpsert = schema.MustUpsert(`{
	"type": "object",
	"properties": {
		"username": {"type": "string"},
		"password": {"type": "string"}
	},
	"required": ["username", "password"],
	"additionalProperties": false
}`)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionInfo struct {
	SessionID string    `json:"sessionId"`
	ExpiresOn time.Time `json:"expiresOn"`
}

type loginResult struct {
	NewTokenData sessionInfo `json:"newTokenData"`
	User         *User       `json:"user"`
}

// LoginHandler authenticates a user and issues a session. Every attempt,
// successful or not, waits a random slice of a second first so response
// timing does not reveal whether the username exists.
func LoginHandler(store Store, sessions *access.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, apiErr := rest.ValidatedCreateBody(r, loginUpsert)
		if apiErr != nil {
			rest.WriteError(w, r, apiErr)
			return
		}
		login, err := decode[loginRequest](body)
		if err != nil {
			rest.WriteError(w, r, err)
			return
		}

		time.Sleep(time.Duration(rand.Intn(1000)) * time.Millisecond)

		user, err := store.UserByUsername(r.Context(), login.Username)
		if err != nil {
			rest.WriteError(w, r, err)
			return
		}
		if user == nil || !checkPassword(user.PasswordHash, login.Password) {
			rest.WriteError(w, r, rest.ErrInvalidLogin)
			return
		}

		token, expiresOn, err := sessions.Issue(r.Context(), user.ID)
		if err != nil {
			rest.WriteError(w, r, err)
			return
		}
		if err := sessions.SetCookie(w, token, expiresOn); err != nil {
			rest.WriteError(w, r, err)
			return
		}

		rest.SuccessMessage(loginResult{
			NewTokenData: sessionInfo{SessionID: token, ExpiresOn: expiresOn},
			User:         user,
		}, "Successful login. Implement the session ID into your cookies with the \""+
			access.CookieName+"\" key.").Write(w)
	}
}

type logoutResult struct {
	Session *access.Session `json:"session"`
	User    *User           `json:"user"`
}

// LogoutHandler ends the request's session and clears the cookie.
func LogoutHandler(store Store, sessions *access.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := sessions.TokenFromRequest(r)
		if err != nil {
			rest.WriteError(w, r, err)
			return
		}
		if _, _, err := sessions.Validate(r.Context(), token); err != nil {
			rest.WriteError(w, r, err)
			return
		}

		session, auth, err := sessions.Logout(r.Context(), token)
		if err != nil {
			rest.WriteError(w, r, err)
			return
		}

		user, err := store.User(r.Context(), auth.UserID)
		if err != nil {
			rest.WriteError(w, r, err)
			return
		}

		sessions.ClearCookie(w)
		rest.Success(logoutResult{Session: session, User: user}).Write(w)
	}
}
