package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = 60 * time.Minute

type UserService struct {
	userRepo repository.UserRepository
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type UpdateProfileInput struct {
	UserID    uint
	FirstName string
	LastName  string
	Avatar    string
}

type ChangePasswordInput struct {
	UserID          uint
	CurrentPassword string
	NewPassword     string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      models.RoleUser,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and records the login time. Unknown
// users, wrong passwords, and deactivated accounts all return the same
// generic unauthorized error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}
	if in.CurrentPassword == in.NewPassword {
		return models.NewValidationError("New password must differ from the current one")
	}
	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hashed)

	return s.userRepo.Update(ctx, user)
}

// ForgotPassword issues a reset token for the account if it exists and is
// active. The raw token is returned to the caller; only its SHA-256 digest is
// stored. A missing or inactive account returns an empty token and no error
// so the HTTP layer cannot leak which emails exist.
func (s *UserService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil || !user.IsActive {
		return "", nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", models.NewInternalError(err)
	}
	token := hex.EncodeToString(raw)

	digest := sha256.Sum256([]byte(token))
	expires := time.Now().Add(resetTokenTTL)
	user.ResetPasswordToken = hex.EncodeToString(digest[:])
	user.ResetPasswordExpires = &expires

	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}
	return token, nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	digest := sha256.Sum256([]byte(token))
	user, err := s.userRepo.GetByResetToken(ctx, hex.EncodeToString(digest[:]))
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive ||
		user.ResetPasswordExpires == nil || user.ResetPasswordExpires.Before(time.Now()) {
		return models.NewUnauthorizedError("Invalid or expired reset token")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hashed)
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = nil

	return s.userRepo.Update(ctx, user)
}

// CanModerate reports whether the user holds a moderator-capable role.
// Wired into services that need a role check without a full user load at the
// call site.
func (s *UserService) CanModerate(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.CanModerate(), nil
}
