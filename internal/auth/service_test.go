package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/avdeyev/storefront/internal/domain"
	"github.com/avdeyev/storefront/internal/repository"
)

type mockUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = primitive.NewObjectID()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepo) SaveUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func newTestService() (*Service, *mockUserRepo) {
	repo := newMockUserRepo()
	return NewService(repo, NewTokenManager([]byte("test-secret"))), repo
}

func TestRegister(t *testing.T) {
	svc, repo := newTestService()

	session, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret")

	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, domain.RoleUser, session.User.Role)
	assert.False(t, session.User.ID.IsZero())

	// the stored password is a hash, never the plaintext
	stored, err := repo.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Another Alice", "alice@example.com", "other")
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	registered, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	session, err := svc.Login(context.Background(), "alice@example.com", "s3cret")

	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)
	assert.NotEmpty(t, session.Token)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	// wrong password and unknown email are indistinguishable to the caller
	_, err = svc.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile_PartialFields(t *testing.T) {
	svc, _ := newTestService()
	registered, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	session, err := svc.UpdateProfile(context.Background(), registered.User.ID, "Alicia", "", "")

	require.NoError(t, err)
	assert.Equal(t, "Alicia", session.User.Name)
	assert.Equal(t, "alice@example.com", session.User.Email)
	assert.NotEmpty(t, session.Token)

	// previous password still works
	_, err = svc.Login(context.Background(), "alice@example.com", "s3cret")
	assert.NoError(t, err)
}

func TestUpdateProfile_PasswordChange(t *testing.T) {
	svc, _ := newTestService()
	registered, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), registered.User.ID, "", "", "n3w-pass")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "alice@example.com", "n3w-pass")
	assert.NoError(t, err)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateProfile(context.Background(), primitive.NewObjectID(), "Name", "", "")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
