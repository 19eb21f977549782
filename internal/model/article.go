package model

import (
	"math"
	"time"
)

// DefaultPageSize is the number of articles returned per listing page.
const DefaultPageSize = 10

// Article is a blog post. UserID is fixed at creation.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ArticleWithOwner is an article with its owner eagerly loaded.
type ArticleWithOwner struct {
	Article
	Owner Owner `json:"owner"`
}

// IsOwnedBy reports whether userID owns the article.
func (a *Article) IsOwnedBy(userID string) bool {
	return userID != "" && a.UserID == userID
}

// ArticlePatch holds the optional fields of an article update.
// There is deliberately no owner field.
type ArticlePatch struct {
	Title       *string
	Description *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ArticlePatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil
}

// Apply copies every present field onto a.
func (p ArticlePatch) Apply(a *Article) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T
	Page       int
	PerPage    int
	Total      int64
	TotalPages int
}

// TotalPagesFor returns the number of pages needed for total items.
// An empty listing still has one page.
func TotalPagesFor(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// OffsetFor returns the row offset of a 1-based page.
// Pages too far out to address saturate at the largest representable offset.
func OffsetFor(page, perPage int) int {
	if page < 1 || perPage <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/perPage {
		return math.MaxInt / perPage * perPage
	}
	return (page - 1) * perPage
}
