// Package service contains the business logic layer: validation, ownership
// rules, and orchestration. Handlers translate HTTP to service calls;
// repositories translate service calls to SQL. Services return apperror
// values and know nothing about either neighbour's protocol.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"

	"github.com/yabzec/SnipHub/internal/apperror"
	"github.com/yabzec/SnipHub/internal/auth"
	"github.com/yabzec/SnipHub/internal/email"
	"github.com/yabzec/SnipHub/internal/model"
	"github.com/yabzec/SnipHub/internal/repository"
)

// UsernameGenerator produces a display name for signups that omit one.
type UsernameGenerator interface {
	Generate(ctx context.Context) string
}

// AuthService handles signup, email verification, and login.
type AuthService struct {
	users           repository.UserRepository
	tokens          *auth.TokenService
	passwords       *auth.PasswordService
	mailer          email.Mailer
	usernames       UsernameGenerator
	frontendBaseURL string
	logger          *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	mailer email.Mailer,
	usernames UsernameGenerator,
	frontendBaseURL string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:           users,
		tokens:          tokens,
		passwords:       passwords,
		mailer:          mailer,
		usernames:       usernames,
		frontendBaseURL: frontendBaseURL,
		logger:          logger,
	}
}

// SignupInput carries the signup form fields. Username is optional.
type SignupInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Signup registers a new unverified account and sends the verification mail.
//
// The account only survives if the mail goes out: on delivery failure the
// just-created row is deleted again, keeping "user exists" equivalent to
// "verification email was sent".
func (s *AuthService) Signup(ctx context.Context, in SignupInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return apperror.ValidationFailed("email", "email and password are required")
	}

	if _, err := s.users.GetUserByEmail(ctx, in.Email); err == nil {
		return apperror.Conflict("email already used")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return fmt.Errorf("service/auth: hashing password: %w", err)
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = s.usernames.Generate(ctx)
	}

	verificationToken := uuid.NewString()
	user := &model.User{
		ID:                xid.New().String(),
		Username:          username,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Email:             in.Email,
		PasswordHash:      hash,
		EmailVerifiedAt:   nil,
		VerificationToken: &verificationToken,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("service/auth: creating user: %w", err)
	}

	verifyURL := fmt.Sprintf("%s/verify?token=%s", s.frontendBaseURL, verificationToken)
	body := email.VerificationBody(user.FirstName, verifyURL)

	if err := s.mailer.Send(ctx, user.Email, "Verify your email", body); err != nil {
		// Compensating delete: without the mail the user can never verify,
		// and the email address would stay locked for future signups.
		if delErr := s.users.DeleteUser(ctx, user.ID); delErr != nil {
			s.logger.Error("failed to roll back user after mail failure",
				slog.String("userID", user.ID),
				slog.String("error", delErr.Error()),
			)
		}
		return fmt.Errorf("service/auth: sending verification email: %w", err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return nil
}

// VerifyEmail consumes a verification token. The token is cleared on
// success, so a second call with the same token fails the lookup — single
// use, by design.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperror.ValidationFailed("token", "missing token")
	}

	user, err := s.users.GetUserByVerificationToken(ctx, token)
	if err != nil {
		return apperror.ValidationFailed("token", "invalid token")
	}

	if err := s.users.MarkVerified(ctx, user.ID, time.Now()); err != nil {
		return fmt.Errorf("service/auth: marking user %s verified: %w", user.ID, err)
	}

	s.logger.Info("email verified", slog.String("userID", user.ID))
	return nil
}

// LoginResult bundles the session token with the public profile fields.
type LoginResult struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// Login checks credentials and issues a session token.
//
// Unknown email and wrong password both return the same unauthorized error,
// so responses don't reveal which addresses have accounts. The verification
// check runs before the password check, matching the existing API contract.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	if !user.Verified() {
		return nil, apperror.Forbidden("you need to verify your account")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &LoginResult{
		Token: token,
		User:  user.Public(),
	}, nil
}
