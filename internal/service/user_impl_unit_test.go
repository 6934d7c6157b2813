package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"user-service/shared/interfaces"
	"user-service/shared/models"
	"user-service/shared/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// memoryUserRepository is an in-memory UserRepository with the same
// matching rules as the Mongo implementation.
type memoryUserRepository struct {
	mu      sync.Mutex
	users   map[string]*models.User
	failErr error
}

var _ interfaces.UserRepository = (*memoryUserRepository)(nil)

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]*models.User)}
}

func (r *memoryUserRepository) EnsureIndexes(context.Context) error { return r.failErr }

func (r *memoryUserRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	if _, ok := r.users[user.Username]; ok {
		return models.ErrUserAlreadyExists
	}
	stored := *user
	r.users[user.Username] = &stored
	return nil
}

func (r *memoryUserRepository) get(username string, activeOnly bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	u, ok := r.users[username]
	if !ok || (activeOnly && u.IsDeprecated) {
		return nil, models.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *memoryUserRepository) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.get(username, false)
}

func (r *memoryUserRepository) GetActiveUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.get(username, true)
}

func (r *memoryUserRepository) SetSession(_ context.Context, username, token string, validUntil int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok || u.IsDeprecated {
		return false, nil
	}
	u.Token, u.ValidTokenTime = token, validUntil
	return true, nil
}

func (r *memoryUserRepository) ClearSessionByToken(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Token == token {
			u.Token, u.ValidTokenTime = "", 0
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepository) ClearSessionByUsername(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[username]; ok {
		u.Token, u.ValidTokenTime = "", 0
	}
	return nil
}

func (r *memoryUserRepository) UpdateProfile(_ context.Context, username string, profile models.Profile) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok || u.IsDeprecated {
		return nil, models.ErrUserNotFound
	}
	profile.Normalize()
	u.Profile = profile
	out := *u
	return &out, nil
}

func (r *memoryUserRepository) DeprecateUser(_ context.Context, username, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok || u.IsDeprecated || u.Token != token {
		return false, nil
	}
	u.IsDeprecated = true
	u.Token, u.ValidTokenTime = "", 0
	return true, nil
}

func (r *memoryUserRepository) stored(username string) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.users[username]
}

type recordingPublisher struct {
	events []models.AccountEvent
	err    error
}

func (p *recordingPublisher) PublishAccountEvent(_ context.Context, event models.AccountEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time            { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type serviceFixture struct {
	svc       *userServiceImpl
	repo      *memoryUserRepository
	publisher *recordingPublisher
	clock     *testClock
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	repo := newMemoryUserRepository()
	publisher := &recordingPublisher{}
	clock := &testClock{t: time.Unix(1_700_000_000, 0)}

	svc := NewUserService(repo, NewBcryptHasher("pepper", bcrypt.MinCost), publisher, time.Hour, zap.NewNop()).(*userServiceImpl)
	svc.now = clock.Now

	return &serviceFixture{svc: svc, repo: repo, publisher: publisher, clock: clock}
}

func (f *serviceFixture) register(t *testing.T, username, password string) string {
	t.Helper()
	token, err := f.svc.Register(context.Background(), models.CreateUserRequest{Username: username, Password: password})
	require.NoError(t, err)
	return token
}

func TestRegister_IssuesTokenAndStoresDefaults(t *testing.T) {
	f := newServiceFixture(t)
	phone := "555-0100"

	token, err := f.svc.Register(context.Background(), models.CreateUserRequest{Username: "alice", Password: "pw1", Phone: &phone})
	require.NoError(t, err)
	assert.Len(t, token, utils.TokenLength)

	stored := f.repo.stored("alice")
	assert.Equal(t, token, stored.Token)
	assert.Equal(t, f.clock.t.Unix()+3600, stored.ValidTokenTime)
	assert.Equal(t, f.clock.t.Unix(), stored.RegisterTime)
	assert.NotEqual(t, "pw1", stored.Password, "password must be stored hashed")
	assert.Equal(t, "555-0100", stored.Phone)
	assert.Equal(t, models.GenderOther, stored.Gender)
	assert.Equal(t, models.EducationOther, stored.Education)
	assert.NotNil(t, stored.Following)
	assert.False(t, stored.IsDeprecated)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, models.AccountRegistered, f.publisher.events[0].Event)
	assert.Equal(t, "alice", f.publisher.events[0].Username)
}

func TestRegister_Duplicate(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t, "alice", "pw1")

	_, err := f.svc.Register(context.Background(), models.CreateUserRequest{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, models.ErrUserAlreadyExists)
	assert.Equal(t, models.KindConflict, models.KindOf(err))
}

func TestRegister_EmptyFields(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Register(context.Background(), models.CreateUserRequest{Username: "", Password: "pw"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.Register(context.Background(), models.CreateUserRequest{Username: "bob", Password: ""})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Empty(t, f.publisher.events)
}

func TestRegister_PublisherFailureDoesNotFailRequest(t *testing.T) {
	f := newServiceFixture(t)
	f.publisher.err = errors.New("broker down")

	token, err := f.svc.Register(context.Background(), models.CreateUserRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestRegister_DatabaseFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.failErr = models.ErrDatabase.Wrap(errors.New("connection refused"))

	_, err := f.svc.Register(context.Background(), models.CreateUserRequest{Username: "alice", Password: "pw1"})
	assert.ErrorIs(t, err, models.ErrDatabase)
	assert.Equal(t, models.KindInternal, models.KindOf(err))
}

func TestLogin_RotatesToken(t *testing.T) {
	f := newServiceFixture(t)
	first := f.register(t, "alice", "pw1")

	f.clock.Advance(10 * time.Minute)
	second, err := f.svc.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	stored := f.repo.stored("alice")
	assert.Equal(t, second, stored.Token)
	assert.Equal(t, f.clock.t.Unix()+3600, stored.ValidTokenTime)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newServiceFixture(t)
	token := f.register(t, "alice", "pw1")
	f.register(t, "carol", "pw3")
	require.NoError(t, f.svc.Delete(context.Background(), models.Certificate{Username: "carol", Token: f.repo.stored("carol").Token}))

	_, errWrongPassword := f.svc.Login(context.Background(), "alice", "wrong")
	_, errUnknown := f.svc.Login(context.Background(), "nobody", "pw1")
	_, errDeprecated := f.svc.Login(context.Background(), "carol", "pw3")

	for _, err := range []error{errWrongPassword, errUnknown, errDeprecated} {
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
		assert.Equal(t, models.ErrInvalidCredentials.Error(), err.Error())
	}

	assert.Equal(t, token, f.repo.stored("alice").Token, "failed login must not touch the session")
}

func TestLogout(t *testing.T) {
	f := newServiceFixture(t)
	token := f.register(t, "alice", "pw1")

	require.NoError(t, f.svc.Logout(context.Background(), token))
	stored := f.repo.stored("alice")
	assert.Empty(t, stored.Token)
	assert.Zero(t, stored.ValidTokenTime)

	assert.ErrorIs(t, f.svc.Logout(context.Background(), token), models.ErrTokenInvalid)
	assert.ErrorIs(t, f.svc.Logout(context.Background(), ""), models.ErrTokenInvalid)

	_, err := f.svc.VerifyToken(context.Background(), "alice")
	assert.ErrorIs(t, err, models.ErrNotLoggedIn)
}

func TestVerifyToken(t *testing.T) {
	f := newServiceFixture(t)
	token := f.register(t, "alice", "pw1")

	user, err := f.svc.VerifyToken(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, token, user.Token)

	_, err = f.svc.VerifyToken(context.Background(), "nobody")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Equal(t, models.KindUnauthorized, models.KindOf(err))
}

func TestVerifyToken_ExpiryClearsSession(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t, "alice", "pw1")

	f.clock.Advance(time.Hour)
	_, err := f.svc.VerifyToken(context.Background(), "alice")
	require.NoError(t, err, "token is valid up to and including its expiry second")

	f.clock.Advance(time.Second)
	_, err = f.svc.VerifyToken(context.Background(), "alice")
	assert.ErrorIs(t, err, models.ErrTokenExpired)

	stored := f.repo.stored("alice")
	assert.Empty(t, stored.Token)
	assert.Zero(t, stored.ValidTokenTime)

	_, err = f.svc.VerifyToken(context.Background(), "alice")
	assert.ErrorIs(t, err, models.ErrNotLoggedIn)
}

func TestProfile(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t, "alice", "pw1")

	user, err := f.svc.Profile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.Password)
	assert.Empty(t, user.Token)
	assert.NotEmpty(t, f.repo.stored("alice").Token, "sanitizing must not alter the stored record")

	_, err = f.svc.Profile(context.Background(), "nobody")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestUpdate(t *testing.T) {
	f := newServiceFixture(t)
	token := f.register(t, "alice", "pw1")
	before := f.repo.stored("alice")

	in := models.User{
		Username: "alice",
		Token:    token,
		Password: "attempted-overwrite",
		Profile: models.Profile{
			Gender:    models.GenderFemale,
			Education: models.EducationMaster,
			School:    "X",
			Following: []string{"bob"},
		},
		RegisterTime: 1,
		IsDeprecated: true,
	}

	updated, err := f.svc.Update(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.GenderFemale, updated.Gender)
	assert.Equal(t, "X", updated.School)
	assert.Equal(t, []string{"bob"}, updated.Following)
	assert.Empty(t, updated.Password)
	assert.Empty(t, updated.Token)

	after := f.repo.stored("alice")
	assert.Equal(t, before.Password, after.Password)
	assert.Equal(t, before.RegisterTime, after.RegisterTime)
	assert.Equal(t, token, after.Token)
	assert.False(t, after.IsDeprecated)
	assert.Equal(t, []string{}, after.Published)
}

func TestUpdate_TokenMismatch(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t, "alice", "pw1")

	_, err := f.svc.Update(context.Background(), models.User{Username: "alice", Token: "not-the-token"})
	assert.ErrorIs(t, err, models.ErrTokenMismatch)
	assert.Equal(t, models.KindUnauthorized, models.KindOf(err))
}

func TestUpdate_ExpiredToken(t *testing.T) {
	f := newServiceFixture(t)
	token := f.register(t, "alice", "pw1")

	f.clock.Advance(2 * time.Hour)
	_, err := f.svc.Update(context.Background(), models.User{Username: "alice", Token: token})
	assert.ErrorIs(t, err, models.ErrTokenExpired)
}

func TestDelete(t *testing.T) {
	f := newServiceFixture(t)
	token := f.register(t, "alice", "pw1")

	assert.ErrorIs(t, f.svc.Delete(context.Background(), models.Certificate{Username: "alice", Token: "wrong"}), models.ErrCertificateInvalid)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), models.Certificate{Username: "alice", Token: ""}), models.ErrCertificateInvalid)

	require.NoError(t, f.svc.Delete(context.Background(), models.Certificate{Username: "alice", Token: token}))
	stored := f.repo.stored("alice")
	assert.True(t, stored.IsDeprecated)
	assert.Empty(t, stored.Token)

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, models.AccountDeleted, f.publisher.events[1].Event)

	_, err := f.svc.Login(context.Background(), "alice", "pw1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = f.svc.VerifyToken(context.Background(), "alice")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), models.Certificate{Username: "alice", Token: token}), models.ErrCertificateInvalid)

	// Profile still serves soft-deleted accounts.
	user, err := f.svc.Profile(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, user.IsDeprecated)
}

func TestVerifyCertificate(t *testing.T) {
	f := newServiceFixture(t)
	token := f.register(t, "alice", "pw1")

	assert.NoError(t, f.svc.VerifyCertificate(context.Background(), models.Certificate{Username: "alice", Token: token}))
	assert.ErrorIs(t, f.svc.VerifyCertificate(context.Background(), models.Certificate{Username: "alice", Token: "x"}), models.ErrTokenMismatch)
	assert.ErrorIs(t, f.svc.VerifyCertificate(context.Background(), models.Certificate{Username: "nobody", Token: token}), models.ErrUnauthorized)
}

func TestTokensAreUniqueAcrossLogins(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t, "alice", "pw1")

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		token, err := f.svc.Login(context.Background(), "alice", "pw1")
		require.NoError(t, err)
		_, dup := seen[token]
		require.False(t, dup)
		seen[token] = struct{}{}
	}
}
