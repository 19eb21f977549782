// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"encoding/json"
	"time"

	"github.com/blogback/blogback/internal/model"
)

// ArticleRequest is the body of article create and update requests.
// Absent fields stay nil so updates can be partial.
type ArticleRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	// UserID is accepted only so that a client-supplied owner can be detected
	// and ignored.
	UserID json.RawMessage `json:"user_id,omitempty"`
}

// HasUserID reports whether the client tried to set the owner.
func (r *ArticleRequest) HasUserID() bool {
	return len(r.UserID) > 0
}

// Patch converts the request into an ArticlePatch.
func (r *ArticleRequest) Patch() model.ArticlePatch {
	return model.ArticlePatch{Title: r.Title, Description: r.Description}
}

// OwnerResponse is the author embedded in an article.
type OwnerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ArticleResponse represents an article in API responses.
type ArticleResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	UserID      string        `json:"user_id"`
	Owner       OwnerResponse `json:"owner"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ArticleEnvelope wraps a single article.
type ArticleEnvelope struct {
	Data *ArticleResponse `json:"data"`
}

// ArticleListResponse represents one page of articles.
type ArticleListResponse struct {
	Data       []ArticleResponse `json:"data"`
	Pagination *Pagination       `json:"pagination"`
}

// Pagination provides page-number pagination info.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// ToArticleResponse converts an ArticleWithOwner to ArticleResponse.
func ToArticleResponse(a *model.ArticleWithOwner) *ArticleResponse {
	return &ArticleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		UserID:      a.UserID,
		Owner:       OwnerResponse{ID: a.Owner.ID, Name: a.Owner.Name},
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ToArticleListResponse converts a page of articles to ArticleListResponse.
func ToArticleListResponse(page *model.Page[*model.ArticleWithOwner]) *ArticleListResponse {
	data := make([]ArticleResponse, len(page.Items))
	for i, a := range page.Items {
		data[i] = *ToArticleResponse(a)
	}
	return &ArticleListResponse{
		Data: data,
		Pagination: &Pagination{
			Page:       page.Page,
			PerPage:    page.PerPage,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	}
}
