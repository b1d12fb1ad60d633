package services

import (
	"context"
	"fmt"

	"github.com/mymedicos/discuss-backend/auth"
	"github.com/mymedicos/discuss-backend/errs"
	"github.com/mymedicos/discuss-backend/models"
	"github.com/mymedicos/discuss-backend/observability"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// IdentityService verifies credentials and maps identities to local profiles.
type IdentityService struct {
	verifier  auth.Verifier
	users     UserStore
	directory LegacyDirectory
	logger    zerolog.Logger
	inflight  singleflight.Group
}

func NewIdentityService(verifier auth.Verifier, users UserStore, directory LegacyDirectory) *IdentityService {
	return &IdentityService{
		verifier:  verifier,
		users:     users,
		directory: directory,
		logger:    log.With().Str("service", "identity").Logger(),
	}
}

// VerifyCaller fails with Unauthorized when the credential is missing or rejected.
func (s *IdentityService) VerifyCaller(ctx context.Context, token string) (*auth.Identity, error) {
	if token == "" {
		return nil, errs.NewMissingTokenError()
	}

	identity, err := s.verifier.Verify(ctx, token)
	if err != nil {
		if errs.IsUnauthorized(err) {
			return nil, err
		}
		return nil, errs.NewInvalidTokenError(err)
	}
	return identity, nil
}

// OptionalCaller never fails: any verification problem yields an anonymous caller (nil).
func (s *IdentityService) OptionalCaller(ctx context.Context, token string) *auth.Identity {
	if token == "" {
		return nil
	}

	identity, err := s.verifier.Verify(ctx, token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("ignoring invalid credential on optional auth route")
		return nil
	}
	return identity
}

type provisioned struct {
	user    *models.User
	created bool
}

// ResolveOrProvision returns the caller's profile, creating it from the legacy
// directory on first sight. created reports whether the profile was created
// by this login; concurrent first logins for one uid share one attempt and
// all observe created.
func (s *IdentityService) ResolveOrProvision(ctx context.Context, identity *auth.Identity) (*models.User, bool, error) {
	user, err := s.users.FindByUID(ctx, identity.UID)
	if err != nil {
		return nil, false, err
	}
	if user != nil {
		return user, false, nil
	}

	// The attempt is shared by every concurrent caller, so it must not die
	// with the first caller's request.
	shared := context.WithoutCancel(ctx)
	result, err, _ := s.inflight.Do(identity.UID, func() (any, error) {
		return s.provision(shared, identity)
	})
	if err != nil {
		return nil, false, err
	}

	p := result.(provisioned)
	return p.user, p.created, nil
}

func (s *IdentityService) provision(ctx context.Context, identity *auth.Identity) (provisioned, error) {
	user, err := s.users.FindByUID(ctx, identity.UID)
	if err != nil {
		return provisioned{}, err
	}
	if user != nil {
		return provisioned{user: user}, nil
	}

	if identity.Phone == "" {
		return provisioned{}, errs.NewNotFoundError("user not found in legacy directory")
	}

	profile, err := s.directory.FindByPhone(ctx, identity.Phone)
	if err != nil {
		return provisioned{}, err
	}
	if profile == nil {
		return provisioned{}, errs.NewNotFoundError("user not found in legacy directory")
	}

	user = &models.User{
		UID:         identity.UID,
		Name:        profile.Name,
		Prefix:      profile.Prefix,
		Email:       profile.Email,
		PhoneNumber: profile.PhoneNumber,
		PhotoURL:    profile.Profile,
		Interests:   profile.ProfileInterests(),
	}
	if err := s.users.Add(ctx, user); err != nil {
		if errs.IsAlreadyExists(err) {
			return provisioned{}, errs.NewConflictError(fmt.Sprintf("user %s was provisioned concurrently", identity.UID))
		}
		return provisioned{}, err
	}

	observability.UsersProvisioned.Inc()
	s.logger.Info().Str("uid", user.UID).Msg("provisioned user from legacy directory")
	return provisioned{user: user, created: true}, nil
}
