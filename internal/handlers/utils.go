// internal/handlers/utils.go
package handlers

import "net/http"

// sessionCookieName is the cookie issued alongside every session token.
const sessionCookieName = "auth_token"

// sessionToken pulls the caller's session token from the request. An explicit
// ?token= query parameter wins, then the session cookie. An empty result
// means the caller presented no token at all.
func sessionToken(r *http.Request) string {
	if tok := r.URL.Query().Get("token"); tok != "" {
		return tok
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}
