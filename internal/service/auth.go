package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/blogback/blogback/internal/auth"
	"github.com/blogback/blogback/internal/metrics"
	"github.com/blogback/blogback/internal/model"
	"github.com/blogback/blogback/internal/repository"
)

// AuthService handles accounts and bearer tokens.
type AuthService struct {
	users   UserStore
	tokens  TokenStore
	hasher  PasswordHasher
	logger  *slog.Logger
	metrics metrics.Recorder

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens TokenStore, hasher PasswordHasher, logger *slog.Logger, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:   users,
		tokens:  tokens,
		hasher:  hasher,
		logger:  logger,
		metrics: recorder,
	}
}

// RegisterInput defines input for registering an account.
type RegisterInput struct {
	Name                 *string
	Email                *string
	Password             *string
	PasswordConfirmation *string
}

// Register validates input, stores the user and issues their first token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, string, error) {
	name, email := trimmed(input.Name), trimmed(input.Email)

	v := NewValidationError()
	if requireString(v, "name", name) {
		maxLength(v, "name", *name, maxStringLength)
	}
	if requireString(v, "email", email) {
		validEmail(v, "email", *email)
		maxLength(v, "email", *email, maxStringLength)
	}
	if requireString(v, "password", input.Password) {
		minLength(v, "password", *input.Password, minPasswordLength)
		if input.PasswordConfirmation == nil || *input.PasswordConfirmation != *input.Password {
			v.Add("password", "The password field confirmation does not match.")
		}
	}

	if _, ok := v.Fields["email"]; !ok && email != nil {
		taken, err := s.emailTaken(ctx, *email, "")
		if err != nil {
			return nil, "", err
		}
		if taken {
			v.Add("email", "The email has already been taken.")
		}
	}
	if err := v.orNil(); err != nil {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(*input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         *name,
		Email:        *email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	token, plaintext, err := newAccessToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.CreateUserWithToken(ctx, user, token); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			v.Add("email", "The email has already been taken.")
			return nil, "", v
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}
	s.metrics.IncUserRegistered()

	return user, plaintext, nil
}

// LoginInput defines input for logging in.
type LoginInput struct {
	Email    *string
	Password *string
}

// Login checks credentials and issues a new token.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (string, error) {
	email := trimmed(input.Email)

	v := NewValidationError()
	if requireString(v, "email", email) {
		validEmail(v, "email", *email)
	}
	requireString(v, "password", input.Password)
	if err := v.orNil(); err != nil {
		return "", err
	}

	user, err := s.VerifyLogin(ctx, *email, *input.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.metrics.IncLogin(metrics.LoginFailure)
		}
		return "", err
	}
	s.metrics.IncLogin(metrics.LoginSuccess)

	return s.IssueToken(ctx, user.ID)
}

// VerifyLogin returns the user whose stored hash matches password.
// Returns ErrUnknownEmail or ErrInvalidCredentials on failure.
func (s *AuthService) VerifyLogin(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Spend the same hashing time as a real check.
			_, _ = s.hasher.Verify(password, s.dummy())
			return nil, ErrUnknownEmail
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken mints a new bearer token for userID and returns its plaintext.
func (s *AuthService) IssueToken(ctx context.Context, userID string) (string, error) {
	token, plaintext, err := newAccessToken(userID)
	if err != nil {
		return "", err
	}
	if err := s.tokens.CreateToken(ctx, token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	return plaintext, nil
}

// newAccessToken builds an unsaved full-ability token for userID.
func newAccessToken(userID string) (*model.AccessToken, string, error) {
	generated, err := auth.GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return &model.AccessToken{
		ID:          ulid.Make().String(),
		UserID:      userID,
		Name:        model.DefaultTokenName,
		TokenHash:   generated.Hash,
		TokenPrefix: generated.Prefix,
		Abilities:   []string{model.AbilityAll},
		CreatedAt:   time.Now().UTC(),
	}, generated.Plaintext, nil
}

// ResolveToken maps a plaintext bearer token to the identity it grants.
func (s *AuthService) ResolveToken(ctx context.Context, plaintext string) (*model.AuthContext, error) {
	if _, err := auth.ParseToken(plaintext); err != nil {
		return nil, ErrUnauthenticated
	}

	token, err := s.tokens.GetTokenByHash(ctx, auth.HashToken(plaintext))
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("get token: %w", err)
	}

	if err := s.tokens.TouchToken(ctx, token.ID); err != nil {
		s.logger.Warn("failed to touch access token",
			slog.String("token_id", token.ID),
			slog.String("error", err.Error()),
		)
	}

	return &model.AuthContext{
		TokenID:     token.ID,
		TokenPrefix: token.TokenPrefix,
		UserID:      token.UserID,
		Abilities:   token.Abilities,
	}, nil
}

// Logout revokes every token of the user, not only the one in use.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	n, err := s.tokens.DeleteTokensByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	s.metrics.IncLogout()
	s.logger.Info("user logged out",
		slog.String("user_id", userID),
		slog.Int64("tokens_revoked", n),
	)
	return nil
}

// CurrentUser returns the user behind an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the present fields of patch to the user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error) {
	patch.Name, patch.Email = trimmed(patch.Name), trimmed(patch.Email)

	v := NewValidationError()
	if presentString(v, "name", patch.Name) {
		maxLength(v, "name", *patch.Name, maxStringLength)
	}
	if presentString(v, "email", patch.Email) {
		validEmail(v, "email", *patch.Email)
		maxLength(v, "email", *patch.Email, maxStringLength)
		if _, bad := v.Fields["email"]; !bad {
			taken, err := s.emailTaken(ctx, *patch.Email, userID)
			if err != nil {
				return nil, err
			}
			if taken {
				v.Add("email", "The email has already been taken.")
			}
		}
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return user, nil
	}

	patch.Apply(user)
	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			v.Add("email", "The email has already been taken.")
			return nil, v
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ChangePasswordInput defines input for a password change.
type ChangePasswordInput struct {
	CurrentPassword *string
	NewPassword     *string
}

// ChangePassword replaces the password hash after checking the current password.
// A wrong current password yields ErrIncorrectPassword and leaves the hash untouched.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, input ChangePasswordInput) error {
	v := NewValidationError()
	requireString(v, "current_password", input.CurrentPassword)
	if requireString(v, "new_password", input.NewPassword) {
		minLength(v, "new_password", *input.NewPassword, minPasswordLength)
	}
	if err := v.orNil(); err != nil {
		return err
	}

	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(*input.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrIncorrectPassword
	}

	hash, err := s.hasher.Hash(*input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	s.metrics.IncPasswordChanged()
	return nil
}

// emailTaken reports whether another user than exceptUserID owns email.
func (s *AuthService) emailTaken(ctx context.Context, email, exceptUserID string) (bool, error) {
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return existing.ID != exceptUserID, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("dummy-password-for-timing")
	})
	return s.dummyHash
}
