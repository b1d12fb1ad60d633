package api

import (
	"context"

	"github.com/mymedicos/discuss-backend/auth"
	"github.com/mymedicos/discuss-backend/models"
)

type keyType string

const (
	identityKey keyType = "identity"
	userKey     keyType = "user"
	createdKey  keyType = "created"
)

// ctxWithIdentity adds the verified caller to the context
func ctxWithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// ctxWithUser adds the caller's profile and whether this request created it
func ctxWithUser(ctx context.Context, user *models.User, created bool) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, createdKey, created)
}

// ctxGetIdentity returns nil for anonymous callers
func ctxGetIdentity(ctx context.Context) *auth.Identity {
	identity, _ := ctx.Value(identityKey).(*auth.Identity)
	return identity
}

func ctxGetUser(ctx context.Context) (*models.User, bool) {
	user, _ := ctx.Value(userKey).(*models.User)
	created, _ := ctx.Value(createdKey).(bool)
	return user, created
}

// callerUID is "" for anonymous callers
func callerUID(ctx context.Context) string {
	if identity := ctxGetIdentity(ctx); identity != nil {
		return identity.UID
	}
	return ""
}
