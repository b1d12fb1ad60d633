package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/descope/go-sdk/descope"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mymedicos/discuss-backend/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{name: "cookie wins", cookie: "from-cookie", header: "Bearer from-header", want: "from-cookie"},
		{name: "bearer header", header: "Bearer abc.def", want: "abc.def"},
		{name: "other scheme", header: "Basic xyz", want: ""},
		{name: "nothing", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.cookie != "" {
				r.Header.Set("Cookie", CookieName+"="+tt.cookie)
			}
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, TokenFromRequest(r))
		})
	}
}

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v, err := NewJWTVerifier("secret", "discuss")
	require.NoError(t, err)

	token, err := v.Issue(Identity{UID: "u1", Phone: "+91000", Name: "Asha"}, time.Hour)
	require.NoError(t, err)

	identity, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UID)
	assert.Equal(t, "+91000", identity.Phone)
	assert.Equal(t, "Asha", identity.Name)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v, err := NewJWTVerifier("secret", "discuss")
	require.NoError(t, err)
	other, err := NewJWTVerifier("other-secret", "discuss")
	require.NoError(t, err)

	expired, err := v.Issue(Identity{UID: "u1"}, -time.Minute)
	require.NoError(t, err)
	forged, err := other.Issue(Identity{UID: "u1"}, time.Hour)
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "discuss"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), "")
	assert.True(t, errs.IsMissingTokenError(err))

	_, err = v.Verify(context.Background(), expired)
	assert.True(t, errs.IsExpiredTokenError(err))

	_, err = v.Verify(context.Background(), forged)
	assert.True(t, errs.IsInvalidTokenError(err))

	_, err = v.Verify(context.Background(), noSubject)
	assert.True(t, errs.IsInvalidTokenError(err))

	_, err = v.Verify(context.Background(), "not-a-jwt")
	assert.True(t, errs.IsUnauthorized(err))
}

type fakeSessions struct {
	ok    bool
	token *descope.Token
	err   error
}

func (f fakeSessions) ValidateSessionWithToken(context.Context, string) (bool, *descope.Token, error) {
	return f.ok, f.token, f.err
}

func TestDescopeVerifier(t *testing.T) {
	valid := &DescopeVerifier{sessions: fakeSessions{
		ok: true,
		token: &descope.Token{
			ID:     "descope-user",
			Claims: map[string]any{"phone": "+91222", "email": "a@b.c"},
		},
	}}

	identity, err := valid.Verify(context.Background(), "session")
	require.NoError(t, err)
	assert.Equal(t, "descope-user", identity.UID)
	assert.Equal(t, "+91222", identity.Phone)
	assert.Equal(t, "a@b.c", identity.Email)

	invalid := &DescopeVerifier{sessions: fakeSessions{err: errors.New("expired")}}
	_, err = invalid.Verify(context.Background(), "session")
	assert.True(t, errs.IsInvalidTokenError(err))

	_, err = invalid.Verify(context.Background(), "")
	assert.True(t, errs.IsMissingTokenError(err))
}
