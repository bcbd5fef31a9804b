package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gautambamne/ECom-sub000/internal/apperror"
	"github.com/gautambamne/ECom-sub000/internal/model"
	"github.com/gautambamne/ECom-sub000/internal/otp"
	"github.com/gautambamne/ECom-sub000/internal/repository"
	"github.com/gautambamne/ECom-sub000/internal/token"
)

const MinPasswordLen = 8

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Mailer delivers one-time codes. Delivery is best-effort: the code is
// persisted first and can always be re-sent.
type Mailer interface {
	SendVerificationCode(ctx context.Context, toEmail, code string) error
	SendPasswordResetCode(ctx context.Context, toEmail, code string) error
}

// AuthService drives the register → verify → login → refresh → logout and
// forgot-password → check-code → reset-password state machines.
type AuthService struct {
	Users    repository.UserRepository
	Sessions repository.SessionRepository
	Tokens   *token.Service
	Mail     Mailer // optional
	log      *zap.Logger
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens *token.Service,
	mail Mailer,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{Users: users, Sessions: sessions, Tokens: tokens, Mail: mail, log: log}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginResult carries everything the handler needs to answer a successful
// login: the identity, both signed tokens, and the session row.
type LoginResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
	Session      *model.Session
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegister(in *RegisterInput) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	if in.Email == "" {
		fields["email"] = "email is required"
	} else if !emailRegex.MatchString(in.Email) {
		fields["email"] = "invalid email format"
	}
	if len(in.Password) < MinPasswordLen {
		fields["password"] = "password must be at least 8 characters"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Register creates an unverified identity with a fresh verification code.
// Registering over an existing *unverified* record overwrites its name,
// password and code in place, treating it as a retry of an abandoned signup.
// A verified email conflicts.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = normalizeEmail(in.Email)
	if fields := validateRegister(&in); fields != nil {
		return nil, apperror.Validation("Invalid registration data", fields)
	}

	existing, err := s.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if existing != nil && existing.IsVerified {
		return nil, apperror.Conflict("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	code, expiresAt := otp.Issue()
	now := time.Now()

	var user *model.User
	if existing != nil {
		existing.Name = in.Name
		existing.PasswordHash = string(hash)
		existing.VerificationCode = &code
		existing.CodeExpiresAt = &expiresAt
		existing.UpdatedAt = now
		if err := s.Users.Update(ctx, existing); err != nil {
			return nil, apperror.Internal(err)
		}
		user = existing
	} else {
		user = &model.User{
			ID:               uuid.NewString(),
			Name:             in.Name,
			Email:            in.Email,
			PasswordHash:     string(hash),
			Roles:            []string{"user"},
			IsVerified:       false,
			VerificationCode: &code,
			CodeExpiresAt:    &expiresAt,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.Users.Create(ctx, user); err != nil {
			return nil, apperror.Internal(err)
		}
	}

	s.sendCode(ctx, user.Email, code, false)
	return user, nil
}

// Verify consumes the verification code and marks the identity verified.
func (s *AuthService) Verify(ctx context.Context, email, code string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := checkCode(user, code); err != nil {
		return err
	}

	user.IsVerified = true
	user.VerificationCode = nil
	user.CodeExpiresAt = nil
	user.UpdatedAt = time.Now()
	if err := s.Users.Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// Login authenticates the password, issues both tokens and records a session.
func (s *AuthService) Login(ctx context.Context, email, password, ip, userAgent string) (*LoginResult, error) {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		return nil, apperror.Forbidden("Please verify your email to login")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	accessToken, err := s.Tokens.SignAccess(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	refreshToken, err := s.Tokens.SignRefresh(user.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := time.Now()
	session := &model.Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		IP:           ip,
		UserAgent:    userAgent,
		ExpiresAt:    now.Add(s.Tokens.RefreshTTL()),
		CreatedAt:    now,
	}
	if err := s.Sessions.Create(ctx, session); err != nil {
		return nil, apperror.Internal(err)
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Session:      session,
	}, nil
}

// Refresh exchanges a live refresh credential for a new access token. Every
// failure mode reads the same to the caller.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	invalid := apperror.Unauthorized("Invalid or expired refresh token")

	claims, err := s.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", invalid
	}

	session, err := s.Sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", apperror.Internal(err)
	}
	if session == nil {
		return "", invalid
	}
	if session.Expired(time.Now()) {
		if err := s.Sessions.Delete(ctx, session.ID); err != nil {
			s.log.Warn("failed to delete expired session",
				zap.String("session_id", session.ID), zap.Error(err))
		}
		return "", invalid
	}

	user, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", apperror.Internal(err)
	}
	if user == nil {
		return "", invalid
	}

	accessToken, err := s.Tokens.SignAccess(user)
	if err != nil {
		return "", apperror.Internal(err)
	}
	return accessToken, nil
}

// Logout deletes the session matching the presented refresh token, if any.
// An unknown or absent token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	session, err := s.Sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return apperror.Internal(err)
	}
	if session == nil {
		return nil
	}
	if err := s.Sessions.Delete(ctx, session.ID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// ForgotPassword issues a fresh reset code. The password is unchanged until
// the code is consumed by ResetPassword.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, expiresAt := otp.Issue()
	user.VerificationCode = &code
	user.CodeExpiresAt = &expiresAt
	user.UpdatedAt = time.Now()
	if err := s.Users.Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}

	s.sendCode(ctx, user.Email, code, true)
	return nil
}

// ResendCode re-issues a registration verification code.
func (s *AuthService) ResendCode(ctx context.Context, email string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return apperror.Conflict("Email already verified")
	}

	code, expiresAt := otp.Issue()
	user.VerificationCode = &code
	user.CodeExpiresAt = &expiresAt
	user.UpdatedAt = time.Now()
	if err := s.Users.Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}

	s.sendCode(ctx, user.Email, code, false)
	return nil
}

// CheckCode confirms a code without consuming it.
func (s *AuthService) CheckCode(ctx context.Context, email, code string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	return checkCode(user, code)
}

// ResetPassword consumes the reset code and overwrites the password.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < MinPasswordLen {
		return apperror.Validation("Invalid password", map[string]string{
			"password": "password must be at least 8 characters",
		})
	}

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := checkCode(user, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Internal(err)
	}

	user.PasswordHash = string(hash)
	user.VerificationCode = nil
	user.CodeExpiresAt = nil
	user.UpdatedAt = time.Now()
	if err := s.Users.Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *AuthService) userByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

// checkCode enforces single-use, match and expiry. A consumed code reads as
// invalid because the flow that consumed it nulled both fields.
func checkCode(user *model.User, code string) error {
	if user.VerificationCode == nil || code == "" || *user.VerificationCode != code {
		return apperror.Validation("Invalid verification code", nil)
	}
	if user.CodeExpiresAt == nil || time.Now().After(*user.CodeExpiresAt) {
		return apperror.Unauthorized("Verification code expired")
	}
	return nil
}

func (s *AuthService) sendCode(ctx context.Context, email, code string, reset bool) {
	if s.Mail == nil {
		return
	}
	var err error
	if reset {
		err = s.Mail.SendPasswordResetCode(ctx, email, code)
	} else {
		err = s.Mail.SendVerificationCode(ctx, email, code)
	}
	if err != nil {
		s.log.Warn("failed to send code email", zap.String("email", email), zap.Error(err))
	}
}
