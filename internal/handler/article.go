package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/blogback/blogback/internal/auth"
	"github.com/blogback/blogback/internal/handler/dto"
	"github.com/blogback/blogback/internal/model"
	"github.com/blogback/blogback/internal/service"
)

// ArticleService is the article behaviour the handler needs.
// *service.ArticleService implements it.
type ArticleService interface {
	List(ctx context.Context, page int) (*model.Page[*model.ArticleWithOwner], error)
	Get(ctx context.Context, id string) (*model.ArticleWithOwner, error)
	Create(ctx context.Context, userID string, input service.CreateArticleInput) (*model.ArticleWithOwner, error)
	Update(ctx context.Context, userID, id string, patch model.ArticlePatch) (*model.ArticleWithOwner, error)
	Delete(ctx context.Context, userID, id string) error
}

// ArticleHandler handles HTTP requests for article operations.
type ArticleHandler struct {
	svc    ArticleService
	logger *slog.Logger
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(svc ArticleService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /articles?page=N.
// A missing or malformed page parameter means page 1.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	result, err := h.svc.List(r.Context(), page)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToArticleListResponse(result))
}

// Get handles GET /articles/{id}.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ArticleEnvelope{Data: dto.ToArticleResponse(article)})
}

// Create handles POST /articles.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.ArticleRequest
	if err := decodeJSON(r, &req); err != nil {
		handleDecodeError(w, err)
		return
	}
	h.warnOwnerOverride(r, &req, userID)

	article, err := h.svc.Create(r.Context(), userID, service.CreateArticleInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ArticleEnvelope{Data: dto.ToArticleResponse(article)})
}

// Update handles PUT and PATCH /articles/{id}. Both accept partial bodies.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.ArticleRequest
	if err := decodeJSON(r, &req); err != nil {
		handleDecodeError(w, err)
		return
	}
	h.warnOwnerOverride(r, &req, userID)

	article, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), req.Patch())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ArticleEnvelope{Data: dto.ToArticleResponse(article)})
}

// Delete handles DELETE /articles/{id}.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// warnOwnerOverride logs requests that try to choose the article owner.
// The field is never applied.
func (h *ArticleHandler) warnOwnerOverride(r *http.Request, req *dto.ArticleRequest, userID string) {
	if !req.HasUserID() {
		return
	}
	h.logger.Warn("ignoring client supplied user_id",
		slog.String("user_id", userID),
		slog.String("supplied", string(req.UserID)),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
	)
}

// handleServiceError maps service errors to HTTP responses.
func (h *ArticleHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Article not found.")
		return
	}
	writeServiceError(w, r, h.logger, err)
}
