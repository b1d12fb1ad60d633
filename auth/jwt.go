package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mymedicos/discuss-backend/errs"
)

// SessionClaims are the claims of a self-issued session token. The subject is
// the user's external id.
type SessionClaims struct {
	Phone string `json:"phone_number"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier accepts HS256 session tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
	issuer string
}

func NewJWTVerifier(secret, issuer string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("jwt verifier needs a signing secret")
	}
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, errs.NewMissingTokenError()
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, errs.NewExpiredTokenError()
	case err != nil:
		return nil, errs.NewInvalidTokenError(err)
	case claims.Subject == "":
		return nil, errs.NewInvalidTokenError(errors.New("token has no subject"))
	}

	return &Identity{
		UID:   claims.Subject,
		Phone: claims.Phone,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}

// Issue signs a session token for identity, valid for ttl.
func (v *JWTVerifier) Issue(identity Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Phone: identity.Phone,
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}
