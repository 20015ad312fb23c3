package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"pulsecapture_backend/internal/auth/repository"
	"pulsecapture_backend/internal/auth/transport"
	"pulsecapture_backend/platform/apperr"
	"pulsecapture_backend/platform/logger"
	"pulsecapture_backend/platform/validator"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]repository.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[uuid.UUID]repository.User)}
}

func (s *memoryStore) Create(_ context.Context, params repository.CreateUserParams) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == params.Email {
			return repository.User{}, repository.ErrDuplicateEmail
		}
	}

	now := time.Now()
	user := repository.User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *memoryStore) GetByEmail(_ context.Context, email string) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return repository.User{}, repository.ErrNotFound
}

func (s *memoryStore) GetByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (s *memoryStore) List(_ context.Context) ([]repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]repository.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	return users, nil
}

func (s *memoryStore) Update(_ context.Context, id uuid.UUID, params repository.UpdateUserParams) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	if params.Email != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Email == *params.Email {
				return repository.User{}, repository.ErrDuplicateEmail
			}
		}
		user.Email = *params.Email
	}
	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.Role != nil {
		user.Role = *params.Role
	}
	if params.IsActive != nil {
		user.IsActive = *params.IsActive
	}
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return user, nil
}

func (s *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type testJWTConfig struct{}

func (testJWTConfig) GetJWTSecret() string     { return "test-secret" }
func (testJWTConfig) GetJWTTTL() time.Duration { return 24 * time.Hour }

type testBootstrapConfig struct {
	name, email, password string
}

func (c testBootstrapConfig) GetBootstrapAdminName() string     { return c.name }
func (c testBootstrapConfig) GetBootstrapAdminEmail() string    { return c.email }
func (c testBootstrapConfig) GetBootstrapAdminPassword() string { return c.password }

func newTestService(t *testing.T) (*Service, *memoryStore) {
	t.Helper()
	store := newMemoryStore()
	svc := New(store, testJWTConfig{}, validator.New(), logger.New("test"))
	return svc, store
}

func createUser(t *testing.T, svc *Service, email string) transport.UserResponse {
	t.Helper()
	user, err := svc.CreateUser(t.Context(), transport.CreateUserRequest{
		Name:     "Test User",
		Email:    email,
		Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	createUser(t, svc, "admin@acme.test")

	resp, err := svc.Login(t.Context(), transport.LoginRequest{
		Email:    "admin@acme.test",
		Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.User.Email != "admin@acme.test" || resp.User.Role != "admin" {
		t.Errorf("user = %+v", resp.User)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	createUser(t, svc, "admin@acme.test")

	_, err := svc.Login(t.Context(), transport.LoginRequest{
		Email:    "admin@acme.test",
		Password: "wrong-password",
	})
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	svc, _ := newTestService(t)
	createUser(t, svc, "admin@acme.test")

	_, errUnknown := svc.Login(t.Context(), transport.LoginRequest{
		Email:    "nobody@acme.test",
		Password: "correct-horse-battery",
	})
	_, errWrongPass := svc.Login(t.Context(), transport.LoginRequest{
		Email:    "admin@acme.test",
		Password: "bad",
	})

	if errUnknown == nil || errWrongPass == nil {
		t.Fatal("both logins must fail")
	}
	if errUnknown.Error() != errWrongPass.Error() {
		t.Errorf("credential errors must be indistinguishable: %q vs %q", errUnknown, errWrongPass)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	svc, store := newTestService(t)
	user := createUser(t, svc, "admin@acme.test")

	id, _ := uuid.Parse(user.ID)
	inactive := false
	if _, err := store.Update(t.Context(), id, repository.UpdateUserParams{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate user: %v", err)
	}

	_, err := svc.Login(t.Context(), transport.LoginRequest{
		Email:    "admin@acme.test",
		Password: "correct-horse-battery",
	})
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	createUser(t, svc, "admin@acme.test")

	_, err := svc.CreateUser(t.Context(), transport.CreateUserRequest{
		Name:     "Other User",
		Email:    "admin@acme.test",
		Password: "another-password",
	})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for duplicate email, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateUser(t.Context(), transport.CreateUserRequest{
		Name:     "Test User",
		Email:    "test@acme.test",
		Password: "short",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	svc, store := newTestService(t)
	cfg := testBootstrapConfig{name: "Root", email: "root@acme.test", password: "bootstrap-password"}

	for i := 0; i < 2; i++ {
		if err := svc.EnsureBootstrapAdmin(t.Context(), cfg); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	users, _ := store.List(t.Context())
	if len(users) != 1 {
		t.Fatalf("users = %d, want 1 after repeated bootstrap", len(users))
	}
	if users[0].Role != "admin" {
		t.Errorf("role = %q, want admin", users[0].Role)
	}

	if _, err := svc.Login(t.Context(), transport.LoginRequest{
		Email:    "root@acme.test",
		Password: "bootstrap-password",
	}); err != nil {
		t.Fatalf("bootstrap admin cannot log in: %v", err)
	}
}

func TestEnsureBootstrapAdminSkippedWithoutConfig(t *testing.T) {
	svc, store := newTestService(t)

	if err := svc.EnsureBootstrapAdmin(t.Context(), testBootstrapConfig{}); err != nil {
		t.Fatalf("EnsureBootstrapAdmin: %v", err)
	}
	if users, _ := store.List(t.Context()); len(users) != 0 {
		t.Fatal("no user must be created without bootstrap config")
	}
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newTestService(t)
	admin := createUser(t, svc, "admin@acme.test")
	other := createUser(t, svc, "other@acme.test")

	adminID, _ := uuid.Parse(admin.ID)

	if err := svc.DeleteUser(t.Context(), admin.ID, adminID); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("self-deletion must be rejected, got %v", err)
	}

	if err := svc.DeleteUser(t.Context(), other.ID, adminID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if err := svc.DeleteUser(t.Context(), other.ID, adminID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestUpdateUserPasswordRehash(t *testing.T) {
	svc, _ := newTestService(t)
	user := createUser(t, svc, "admin@acme.test")

	newPass := "brand-new-password"
	if _, err := svc.UpdateUser(t.Context(), user.ID, transport.UpdateUserRequest{Password: &newPass}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	if _, err := svc.Login(t.Context(), transport.LoginRequest{
		Email:    "admin@acme.test",
		Password: newPass,
	}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	if _, err := svc.Login(t.Context(), transport.LoginRequest{
		Email:    "admin@acme.test",
		Password: "correct-horse-battery",
	}); err == nil {
		t.Fatal("old password must stop working")
	}
}
