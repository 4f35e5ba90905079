package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/shopsphere/shopsphere-backend/pkg/auth/session"
	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
	"github.com/shopsphere/shopsphere-backend/pkg/enums"
	pkgerrors "github.com/shopsphere/shopsphere-backend/pkg/errors"
	"github.com/shopsphere/shopsphere-backend/pkg/logger"
	"github.com/shopsphere/shopsphere-backend/pkg/security"
)

type stubUserRepo struct {
	users      map[string]*models.User
	createErr  error
	lastHash   map[uuid.UUID]string
	lastOTP    string
	lastExpiry time.Time
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:    map[string]*models.User{},
		lastHash: map[uuid.UUID]string{},
	}
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.Email] = user
	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) SetResetOTP(ctx context.Context, id uuid.UUID, otp string, expiry time.Time) error {
	s.lastOTP = otp
	s.lastExpiry = expiry
	for _, user := range s.users {
		if user.ID == id {
			user.ForgetPasswordOTP = &otp
			user.ForgetPasswordExpiry = &expiry
		}
	}
	return nil
}

func (s *stubUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	s.lastHash[id] = hash
	for _, user := range s.users {
		if user.ID == id {
			user.PasswordHash = hash
		}
	}
	return nil
}

type stubSessions struct {
	created   []session.Principal
	destroyed []string
}

func (s *stubSessions) Create(ctx context.Context, principal session.Principal) (string, error) {
	s.created = append(s.created, principal)
	return "session-" + uuid.NewString(), nil
}

func (s *stubSessions) Destroy(ctx context.Context, sessionID string) error {
	s.destroyed = append(s.destroyed, sessionID)
	return nil
}

type stubMailer struct {
	sentTo  []string
	sentOTP []string
}

func (s *stubMailer) SendOTP(ctx context.Context, toEmail, otp string, expiry time.Time) error {
	s.sentTo = append(s.sentTo, toEmail)
	s.sentOTP = append(s.sentOTP, otp)
	return nil
}

type authFixture struct {
	svc      Service
	repo     *stubUserRepo
	sessions *stubSessions
	mail     *stubMailer
	now      time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		repo:     newStubUserRepo(),
		sessions: &stubSessions{},
		mail:     &stubMailer{},
		now:      time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
	svc, err := NewService(ServiceParams{
		UserRepo: f.repo,
		Sessions: f.sessions,
		Mailer:   f.mail,
		Logger:   logger.New(logger.Options{ServiceName: "auth-test"}),
		Now:      func() time.Time { return f.now },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func (f *authFixture) register(t *testing.T, email, password string) *AccountDTO {
	t.Helper()
	account, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "asha",
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return account
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	account := f.register(t, "Asha@Example.com", "hunter2hunter2")
	if account.Email != "asha@example.com" {
		t.Fatalf("expected lowercased email, got %q", account.Email)
	}
	if account.Role != string(enums.RoleUser) {
		t.Fatalf("expected user role, got %q", account.Role)
	}

	stored := f.repo.users["asha@example.com"]
	if stored.PasswordHash == "hunter2hunter2" {
		t.Fatal("password stored in plaintext")
	}
	if ok, err := security.VerifyPassword("hunter2hunter2", stored.PasswordHash); err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	f.repo.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "asha", Email: "asha@example.com", Password: "hunter2hunter2",
	})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	f.repo.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "asha", Email: "asha@example.com", Password: "hunter2hunter2",
	})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestLoginUnknownEmailUnauthorized(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), LoginInput{
		Email: "nobody@example.com", Password: "whatever123",
	})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	f.register(t, "asha@example.com", "hunter2hunter2")

	_, err := f.svc.Login(context.Background(), LoginInput{
		Email: "asha@example.com", Password: "not-the-password",
	})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginMintsSessionWithPrincipal(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	account := f.register(t, "asha@example.com", "hunter2hunter2")

	result, err := f.svc.Login(context.Background(), LoginInput{
		Email: "Asha@Example.com", Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a session token")
	}
	if len(f.sessions.created) != 1 {
		t.Fatalf("expected one session, got %d", len(f.sessions.created))
	}
	principal := f.sessions.created[0]
	if principal.UserID != account.ID || principal.Email != "asha@example.com" {
		t.Fatalf("unexpected principal %+v", principal)
	}
	if principal.Role != enums.RoleUser {
		t.Fatalf("unexpected role %q", principal.Role)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	if err := f.svc.Logout(context.Background(), "sess-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(f.sessions.destroyed) != 1 || f.sessions.destroyed[0] != "sess-1" {
		t.Fatalf("expected sess-1 destroyed, got %v", f.sessions.destroyed)
	}
}

func TestForgotPasswordUnknownEmailNotFound(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	err := f.svc.ForgotPassword(context.Background(), ForgotPasswordInput{Email: "nobody@example.com"})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestForgotPasswordIssuesAndEmailsOTP(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	f.register(t, "asha@example.com", "hunter2hunter2")

	if err := f.svc.ForgotPassword(context.Background(), ForgotPasswordInput{Email: "asha@example.com"}); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if len(f.repo.lastOTP) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", f.repo.lastOTP)
	}
	if !f.repo.lastExpiry.Equal(f.now.Add(time.Hour)) {
		t.Fatalf("expected expiry one hour out, got %s", f.repo.lastExpiry)
	}
	if len(f.mail.sentTo) != 1 || f.mail.sentTo[0] != "asha@example.com" {
		t.Fatalf("expected one email to the account, got %v", f.mail.sentTo)
	}
	if f.mail.sentOTP[0] != f.repo.lastOTP {
		t.Fatal("emailed code differs from stored code")
	}
}

func TestVerifyOTPExpiredOrWrong(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	f.register(t, "asha@example.com", "hunter2hunter2")
	if err := f.svc.ForgotPassword(context.Background(), ForgotPasswordInput{Email: "asha@example.com"}); err != nil {
		t.Fatalf("forgot password: %v", err)
	}

	err := f.svc.VerifyOTP(context.Background(), VerifyOTPInput{Email: "asha@example.com", OTP: "000000"})
	if f.repo.lastOTP == "000000" {
		t.Skip("generated code collided with the probe value")
	}
	expectCode(t, err, pkgerrors.CodeValidation)

	f.now = f.now.Add(2 * time.Hour)
	err = f.svc.VerifyOTP(context.Background(), VerifyOTPInput{Email: "asha@example.com", OTP: f.repo.lastOTP})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestVerifyOTPDoesNotConsumeCode(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	f.register(t, "asha@example.com", "hunter2hunter2")
	if err := f.svc.ForgotPassword(context.Background(), ForgotPasswordInput{Email: "asha@example.com"}); err != nil {
		t.Fatalf("forgot password: %v", err)
	}

	input := VerifyOTPInput{Email: "asha@example.com", OTP: f.repo.lastOTP}
	for i := 0; i < 2; i++ {
		if err := f.svc.VerifyOTP(context.Background(), input); err != nil {
			t.Fatalf("verify attempt %d: %v", i+1, err)
		}
	}
}

func TestResetPasswordConfirmMismatch(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	err := f.svc.ResetPassword(context.Background(), ResetPasswordInput{
		Email: "asha@example.com", Password: "newpassword1", ConfirmPassword: "different1",
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestResetPasswordRehashesCredential(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	account := f.register(t, "asha@example.com", "hunter2hunter2")

	err := f.svc.ResetPassword(context.Background(), ResetPasswordInput{
		Email: "asha@example.com", Password: "newpassword1", ConfirmPassword: "newpassword1",
	})
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}

	hash := f.repo.lastHash[account.ID]
	if hash == "" || hash == "newpassword1" {
		t.Fatalf("expected a fresh hash, got %q", hash)
	}
	if ok, err := security.VerifyPassword("newpassword1", hash); err != nil || !ok {
		t.Fatalf("new hash does not verify: ok=%v err=%v", ok, err)
	}

	_, err = f.svc.Login(context.Background(), LoginInput{Email: "asha@example.com", Password: "hunter2hunter2"})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}
