package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopsphere/shopsphere-backend/internal/mailer"
	"github.com/shopsphere/shopsphere-backend/pkg/auth/session"
	"github.com/shopsphere/shopsphere-backend/pkg/config"
	"github.com/shopsphere/shopsphere-backend/pkg/db"
	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
	"github.com/shopsphere/shopsphere-backend/pkg/enums"
	pkgerrors "github.com/shopsphere/shopsphere-backend/pkg/errors"
	"github.com/shopsphere/shopsphere-backend/pkg/logger"
	"github.com/shopsphere/shopsphere-backend/pkg/security"
	"gorm.io/gorm"
)

const (
	otpDigits = 6
	otpTTL    = time.Hour
)

// UserRepository is the persistence surface the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	SetResetOTP(ctx context.Context, id uuid.UUID, otp string, expiry time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// SessionStore mints and revokes opaque sessions.
type SessionStore interface {
	Create(ctx context.Context, principal session.Principal) (string, error)
	Destroy(ctx context.Context, sessionID string) error
}

// Service exposes account lifecycle operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AccountDTO, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	ForgotPassword(ctx context.Context, input ForgotPasswordInput) error
	VerifyOTP(ctx context.Context, input VerifyOTPInput) error
	ResetPassword(ctx context.Context, input ResetPasswordInput) error
}

// ServiceParams configure the auth service.
type ServiceParams struct {
	UserRepo       UserRepository
	Sessions       SessionStore
	Mailer         mailer.Sender
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
	Now            func() time.Time
}

type service struct {
	users    UserRepository
	sessions SessionStore
	mail     mailer.Sender
	pwCfg    config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:    params.UserRepo,
		sessions: params.Sessions,
		mail:     params.Mailer,
		pwCfg:    params.PasswordConfig,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AccountDTO, error) {
	email := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         enums.RoleUser,
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		user.Phone = &phone
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		if db.IsUniqueViolation(err, "users_username_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "account already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	dto := toAccountDTO(created)
	return &dto, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := normalizeEmail(input.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	principal := session.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
	if user.Phone != nil {
		principal.Phone = *user.Phone
	}

	token, err := s.sessions.Create(ctx, principal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	return &LoginResult{Token: token, Account: toAccountDTO(user)}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "destroy session")
	}
	return nil
}

func (s *service) ForgotPassword(ctx context.Context, input ForgotPasswordInput) error {
	email := normalizeEmail(input.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no account for that email")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	otp, err := security.GenerateOTP(otpDigits)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}
	expiry := s.now().UTC().Add(otpTTL)

	if err := s.users.SetResetOTP(ctx, user.ID, otp, expiry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store otp")
	}

	if s.mail != nil {
		if err := s.mail.SendOTP(ctx, user.Email, otp, expiry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send otp email")
		}
	}
	return nil
}

// VerifyOTP checks the code without consuming it; the code stays valid until
// its expiry or until a later ForgotPassword replaces it.
func (s *service) VerifyOTP(ctx context.Context, input VerifyOTPInput) error {
	email := normalizeEmail(input.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no account for that email")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	if user.ForgetPasswordOTP == nil || user.ForgetPasswordExpiry == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "no reset code issued")
	}
	if s.now().UTC().After(user.ForgetPasswordExpiry.UTC()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "reset code expired")
	}
	if *user.ForgetPasswordOTP != input.OTP {
		return pkgerrors.New(pkgerrors.CodeValidation, "incorrect reset code")
	}
	return nil
}

// ResetPassword re-hashes the credential. It does not require a prior
// VerifyOTP call; the two-step flow is client-driven.
func (s *service) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if input.Password != input.ConfirmPassword {
		return pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}

	email := normalizeEmail(input.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no account for that email")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	return nil
}

func toAccountDTO(user *models.User) AccountDTO {
	dto := AccountDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	}
	if user.Phone != nil {
		dto.Phone = *user.Phone
	}
	return dto
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
