package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByIDWithPostsFn func(context.Context, uint, int) (*models.User, error)
	getByEmailFn       func(context.Context, string) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	getByResetTokenFn  func(context.Context, string) (*models.User, error)
	createFn           func(context.Context, *models.User) error
	updateFn           func(context.Context, *models.User) error
	deleteFn           func(context.Context, uint) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDWithPosts(ctx context.Context, id uint, limit int) (*models.User, error) {
	return s.getByIDWithPostsFn(ctx, id, limit)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	return s.getByResetTokenFn(ctx, tokenHash)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:          func(_ context.Context, _ uint) (*models.User, error) { return &models.User{}, nil },
		getByIDWithPostsFn: func(_ context.Context, _ uint, _ int) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:       func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByResetTokenFn:  func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:           func(_ context.Context, _ *models.User) error { return nil },
		updateFn:           func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:           func(_ context.Context, _ uint) error { return nil },
	}
}

const testPassword = "Sup3r$ecretPass!"

func hashedPassword(t *testing.T) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	t.Run("duplicate email conflicts", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 1}, nil
		}
		svc := NewUserService(repo)
		_, err := svc.Register(context.Background(), RegisterInput{
			Username: "alice", Email: "alice@example.com", Password: testPassword,
		})
		assertConflictError(t, err)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByUsernameFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 1}, nil
		}
		svc := NewUserService(repo)
		_, err := svc.Register(context.Background(), RegisterInput{
			Username: "alice", Email: "alice@example.com", Password: testPassword,
		})
		assertConflictError(t, err)
	})

	t.Run("weak password rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.Register(context.Background(), RegisterInput{
			Username: "alice", Email: "alice@example.com", Password: "short",
		})
		assertValidationError(t, err)
	})

	t.Run("success stores hashed password and user role", func(t *testing.T) {
		t.Parallel()
		var created *models.User
		repo := noopUserRepo()
		repo.createFn = func(_ context.Context, u *models.User) error {
			u.ID = 5
			created = u
			return nil
		}
		svc := NewUserService(repo)
		user, err := svc.Register(context.Background(), RegisterInput{
			Username: "alice", Email: "alice@example.com", Password: testPassword,
		})
		require.NoError(t, err)
		assert.Equal(t, uint(5), user.ID)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.NotEqual(t, testPassword, created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte(testPassword)))
	})
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.Authenticate(context.Background(), "ghost@example.com", testPassword)
		assertUnauthorizedError(t, err)
	})

	t.Run("deactivated account", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 1, Password: hashedPassword(t), IsActive: false}, nil
		}
		svc := NewUserService(repo)
		_, err := svc.Authenticate(context.Background(), "alice@example.com", testPassword)
		assertUnauthorizedError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 1, Password: hashedPassword(t), IsActive: true}, nil
		}
		svc := NewUserService(repo)
		_, err := svc.Authenticate(context.Background(), "alice@example.com", "wrong")
		assertUnauthorizedError(t, err)
	})

	t.Run("success records last login", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 1, Password: hashedPassword(t), IsActive: true}, nil
		}
		var saved *models.User
		repo.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		svc := NewUserService(repo)
		user, err := svc.Authenticate(context.Background(), "alice@example.com", testPassword)
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.NotNil(t, user.LastLogin)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	t.Parallel()

	t.Run("wrong current password", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.User, error) {
			return &models.User{ID: 1, Password: hashedPassword(t)}, nil
		}
		svc := NewUserService(repo)
		err := svc.ChangePassword(context.Background(), ChangePasswordInput{
			UserID: 1, CurrentPassword: "wrong", NewPassword: "N3w$ecretPass!!x",
		})
		assertUnauthorizedError(t, err)
	})

	t.Run("same password rejected", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.User, error) {
			return &models.User{ID: 1, Password: hashedPassword(t)}, nil
		}
		svc := NewUserService(repo)
		err := svc.ChangePassword(context.Background(), ChangePasswordInput{
			UserID: 1, CurrentPassword: testPassword, NewPassword: testPassword,
		})
		assertValidationError(t, err)
	})
}

func TestUserService_PasswordResetFlow(t *testing.T) {
	t.Parallel()

	t.Run("unknown email returns empty token without error", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		token, err := svc.ForgotPassword(context.Background(), "ghost@example.com")
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("token is stored as sha256 digest", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 1, IsActive: true}, nil
		}
		var saved *models.User
		repo.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		svc := NewUserService(repo)
		token, err := svc.ForgotPassword(context.Background(), "alice@example.com")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.NotNil(t, saved)

		digest := sha256.Sum256([]byte(token))
		assert.Equal(t, hex.EncodeToString(digest[:]), saved.ResetPasswordToken)
		require.NotNil(t, saved.ResetPasswordExpires)
		assert.WithinDuration(t, time.Now().Add(resetTokenTTL), *saved.ResetPasswordExpires, time.Minute)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		t.Parallel()
		expired := time.Now().Add(-time.Minute)
		repo := noopUserRepo()
		repo.getByResetTokenFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 1, IsActive: true, ResetPasswordExpires: &expired}, nil
		}
		svc := NewUserService(repo)
		err := svc.ResetPassword(context.Background(), "sometoken", "N3w$ecretPass!!x")
		assertUnauthorizedError(t, err)
	})

	t.Run("valid token resets password and clears token fields", func(t *testing.T) {
		t.Parallel()
		expires := time.Now().Add(30 * time.Minute)
		repo := noopUserRepo()
		repo.getByResetTokenFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 1, IsActive: true, ResetPasswordToken: "digest", ResetPasswordExpires: &expires}, nil
		}
		var saved *models.User
		repo.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		svc := NewUserService(repo)
		err := svc.ResetPassword(context.Background(), "sometoken", "N3w$ecretPass!!x")
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Empty(t, saved.ResetPasswordToken)
		assert.Nil(t, saved.ResetPasswordExpires)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("N3w$ecretPass!!x")))
	})
}
