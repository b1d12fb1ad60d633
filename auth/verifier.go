// Package auth verifies caller credentials issued by the identity provider.
package auth

import (
	"context"
	"net/http"
	"strings"
)

// CookieName is the cookie that carries the session token for browser clients.
const CookieName = "accessToken"

// Identity is a verified caller.
type Identity struct {
	UID   string
	Phone string
	Email string
	Name  string
}

// Verifier turns a raw credential into a verified Identity. Implementations
// return an *errs.ApiErr with status 401 when the credential is rejected.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// TokenFromRequest reads the credential from the session cookie, falling back
// to an "Authorization: Bearer" header. It returns "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
