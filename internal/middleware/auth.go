package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/blogback/blogback/internal/auth"
	"github.com/blogback/blogback/internal/model"
	"github.com/blogback/blogback/internal/service"
)

// UnauthenticatedMessage is returned for every authentication failure.
const UnauthenticatedMessage = "Unauthenticated."

// TokenResolver maps a plaintext bearer token to an identity.
type TokenResolver interface {
	ResolveToken(ctx context.Context, plaintext string) (*model.AuthContext, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Resolver TokenResolver
}

// Auth returns a middleware that authenticates requests with a bearer token
// and injects the resolved identity into the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeError(w, http.StatusUnauthorized, CodeUnauthenticated, UnauthenticatedMessage)
				return
			}

			authCtx, err := cfg.Resolver.ResolveToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					logAuthFailure(cfg.Logger, r, "invalid_token")
				} else {
					cfg.Logger.Error("token lookup failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				}
				writeError(w, http.StatusUnauthorized, CodeUnauthenticated, UnauthenticatedMessage)
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("token_id", authCtx.TokenID),
				slog.String("token_prefix", authCtx.TokenPrefix),
				slog.String("user_id", authCtx.UserID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}
