package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/blogback/blogback/internal/auth"
	"github.com/blogback/blogback/internal/handler/dto"
	"github.com/blogback/blogback/internal/model"
	"github.com/blogback/blogback/internal/service"
)

// InvalidCredentialsMessage is returned for every failed login.
const InvalidCredentialsMessage = "The provided credentials are incorrect."

// AuthService is the account behaviour the handler needs.
// *service.AuthService implements it.
type AuthService interface {
	Register(ctx context.Context, input service.RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, input service.LoginInput) (string, error)
	Logout(ctx context.Context, userID string) error
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error)
	ChangePassword(ctx context.Context, userID string, input service.ChangePasswordInput) error
}

// AuthHandler handles registration, login and profile endpoints.
type AuthHandler struct {
	svc    AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		handleDecodeError(w, err)
		return
	}

	user, token, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_registered", slog.String("user_id", user.ID))

	writeJSON(w, http.StatusCreated, dto.RegisterResponse{
		User:  dto.ToUserResponse(user),
		Token: token,
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		handleDecodeError(w, err)
		return
	}

	token, err := h.svc.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}

// Logout handles POST /logout. Every token of the user is revoked.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), auth.UserIDFromContext(r.Context())); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "logout"})
}

// Me handles GET /user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.CurrentUser(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// UpdateUser handles PUT /user/update.
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		handleDecodeError(w, err)
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if _, err := h.svc.UpdateProfile(r.Context(), userID, model.UserPatch{
		Name:  req.Name,
		Email: req.Email,
	}); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "User updated successfully."})
}

// ChangePassword handles PUT /user/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		handleDecodeError(w, err)
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if err := h.svc.ChangePassword(r.Context(), userID, service.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("password_changed", slog.String("user_id", userID))

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Password updated successfully."})
}

// handleServiceError maps service errors to HTTP responses.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		reason := "wrong_password"
		if errors.Is(err, service.ErrUnknownEmail) {
			reason = "unknown_email"
		}
		h.logger.Warn("login failed",
			slog.String("reason", reason),
			slog.String("remote_addr", r.RemoteAddr),
		)
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
			Message: InvalidCredentialsMessage,
			Code:    CodeInvalidCredentials,
			Errors:  map[string][]string{"email": {InvalidCredentialsMessage}},
		})
	case errors.Is(err, service.ErrIncorrectPassword):
		writeError(w, http.StatusForbidden, CodeIncorrectPassword, "The current password is incorrect.")
	case errors.Is(err, service.ErrNotFound):
		// The token outlived its user; treat the caller as anonymous.
		writeError(w, http.StatusUnauthorized, CodeUnauthenticated, "Unauthenticated.")
	default:
		writeServiceError(w, r, h.logger, err)
	}
}
