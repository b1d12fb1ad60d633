package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mymedicos/discuss-backend/auth"
	"github.com/mymedicos/discuss-backend/database"
	"github.com/mymedicos/discuss-backend/database/dbtest"
	"github.com/mymedicos/discuss-backend/errs"
	"github.com/mymedicos/discuss-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockVerifier is a mock type for the auth.Verifier interface
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

// MockUserStore is a mock type for the UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) FindByUIDs(ctx context.Context, uids []string) ([]*models.User, error) {
	args := m.Called(ctx, uids)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserStore) Add(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockDirectory is a mock type for the LegacyDirectory interface
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) FindByPhone(ctx context.Context, phone string) (*models.LegacyProfile, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LegacyProfile), args.Error(1)
}

func newIdentityFixture(t *testing.T) (*IdentityService, database.Database, *MockVerifier) {
	db := database.New(dbtest.Open(t))
	verifier := new(MockVerifier)
	return NewIdentityService(verifier, db.UserRepo(), db.LegacyProfileRepo()), db, verifier
}

func TestVerifyCaller(t *testing.T) {
	svc, _, verifier := newIdentityFixture(t)
	ctx := context.Background()

	verifier.On("Verify", ctx, "good").Return(&auth.Identity{UID: "u1", Phone: "+1"}, nil)
	verifier.On("Verify", ctx, "bad").Return(nil, errs.NewInvalidTokenError(nil))
	verifier.On("Verify", ctx, "broken").Return(nil, errors.New("provider unreachable"))

	identity, err := svc.VerifyCaller(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UID)

	_, err = svc.VerifyCaller(ctx, "")
	assert.True(t, errs.IsMissingTokenError(err))

	_, err = svc.VerifyCaller(ctx, "bad")
	assert.Equal(t, 401, errs.StatusCode(err))

	_, err = svc.VerifyCaller(ctx, "broken")
	assert.Equal(t, 401, errs.StatusCode(err))

	verifier.AssertNumberOfCalls(t, "Verify", 3)
}

func TestOptionalCaller(t *testing.T) {
	svc, _, verifier := newIdentityFixture(t)
	ctx := context.Background()

	verifier.On("Verify", ctx, "good").Return(&auth.Identity{UID: "u1"}, nil)
	verifier.On("Verify", ctx, "bad").Return(nil, errs.NewExpiredTokenError())

	assert.Equal(t, "u1", svc.OptionalCaller(ctx, "good").UID)
	assert.Nil(t, svc.OptionalCaller(ctx, "bad"))
	assert.Nil(t, svc.OptionalCaller(ctx, ""))
}

func TestResolveOrProvision(t *testing.T) {
	svc, db, _ := newIdentityFixture(t)
	ctx := context.Background()

	email := "asha@example.com"
	photo := "https://cdn/asha.png"
	interest := "Cardiology"
	require.NoError(t, db.LegacyProfileRepo().Add(ctx, &models.LegacyProfile{
		PhoneNumber: "+91999",
		Name:        "Asha",
		Email:       &email,
		Profile:     &photo,
		Prefix:      ptr("Dr."),
		Interest:    &interest,
	}))

	identity := &auth.Identity{UID: "firebase-1", Phone: "+91999"}
	user, created, err := svc.ResolveOrProvision(ctx, identity)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Asha", user.Name)
	assert.Equal(t, "+91999", user.PhoneNumber)
	assert.Equal(t, photo, *user.PhotoURL)
	assert.Equal(t, "Dr.", *user.Prefix)
	assert.Equal(t, []string{"Cardiology"}, []string(user.Interests))

	again, created, err := svc.ResolveOrProvision(ctx, identity)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)

	_, _, err = svc.ResolveOrProvision(ctx, &auth.Identity{UID: "stranger", Phone: "+1000"})
	assert.True(t, errs.IsNotFound(err))

	_, _, err = svc.ResolveOrProvision(ctx, &auth.Identity{UID: "no-phone"})
	assert.True(t, errs.IsNotFound(err))
}

func TestResolveOrProvision_ConcurrentFirstLogin(t *testing.T) {
	svc, db, _ := newIdentityFixture(t)
	ctx := context.Background()
	require.NoError(t, db.LegacyProfileRepo().Add(ctx, &models.LegacyProfile{
		PhoneNumber: "+4455",
		Name:        "Ravi",
		Interests:   []string{"a", "a"},
	}))

	identity := &auth.Identity{UID: "same-uid", Phone: "+4455"}
	var wg sync.WaitGroup
	ids := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, _, err := svc.ResolveOrProvision(ctx, identity)
			if assert.NoError(t, err) {
				ids <- user.ID.String()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1)

	user, err := db.UserRepo().FindByUID(ctx, "same-uid")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a"}, []string(user.Interests))
}

func TestResolveOrProvision_LostRaceIsConflict(t *testing.T) {
	users := new(MockUserStore)
	directory := new(MockDirectory)
	svc := NewIdentityService(new(MockVerifier), users, directory)
	ctx := context.Background()

	users.On("FindByUID", mock.Anything, "u1").Return(nil, nil)
	directory.On("FindByPhone", mock.Anything, "+1").Return(&models.LegacyProfile{PhoneNumber: "+1", Name: "N"}, nil)
	users.On("Add", mock.Anything, mock.AnythingOfType("*models.User")).Return(errs.NewAlreadyExists("user"))

	_, _, err := svc.ResolveOrProvision(ctx, &auth.Identity{UID: "u1", Phone: "+1"})
	require.Error(t, err)
	assert.Equal(t, 409, errs.StatusCode(err))
	users.AssertExpectations(t)
	directory.AssertExpectations(t)
}

func TestResolveOrProvision_SurvivesCancelledCaller(t *testing.T) {
	users := new(MockUserStore)
	directory := new(MockDirectory)
	svc := NewIdentityService(new(MockVerifier), users, directory)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	live := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
	users.On("FindByUID", mock.Anything, "u1").Return(nil, nil)
	directory.On("FindByPhone", live, "+1").Return(&models.LegacyProfile{PhoneNumber: "+1", Name: "N"}, nil)
	users.On("Add", live, mock.AnythingOfType("*models.User")).Return(nil)

	user, created, err := svc.ResolveOrProvision(ctx, &auth.Identity{UID: "u1", Phone: "+1"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "u1", user.UID)
	users.AssertExpectations(t)
	directory.AssertExpectations(t)
}
