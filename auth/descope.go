package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/descope/go-sdk/descope"
	"github.com/descope/go-sdk/descope/client"
	"github.com/mymedicos/discuss-backend/errs"
)

// sessionValidator is the part of the Descope authentication API used here.
type sessionValidator interface {
	ValidateSessionWithToken(ctx context.Context, sessionToken string) (bool, *descope.Token, error)
}

// DescopeVerifier validates Descope session tokens. The phone number is read
// from the "phone" custom claim, which the project's JWT template must add.
type DescopeVerifier struct {
	sessions sessionValidator
}

func NewDescopeVerifier(projectID string) (*DescopeVerifier, error) {
	if projectID == "" {
		return nil, errors.New("descope verifier needs a project id")
	}

	descopeClient, err := client.NewWithConfig(&client.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("create descope client: %w", err)
	}
	return &DescopeVerifier{sessions: descopeClient.Auth}, nil
}

func (v *DescopeVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, errs.NewMissingTokenError()
	}

	ok, session, err := v.sessions.ValidateSessionWithToken(ctx, token)
	if err != nil || !ok || session == nil {
		return nil, errs.NewInvalidTokenError(err)
	}

	return &Identity{
		UID:   session.ID,
		Phone: stringClaim(session.Claims, "phone", "phone_number"),
		Email: stringClaim(session.Claims, "email"),
		Name:  stringClaim(session.Claims, "name"),
	}, nil
}

func stringClaim(claims map[string]any, names ...string) string {
	for _, name := range names {
		if value, ok := claims[name].(string); ok && value != "" {
			return value
		}
	}
	return ""
}
