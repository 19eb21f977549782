package service

import "github.com/blogback/blogback/internal/model"

// Authorize permits a mutation of article only by its owner.
func Authorize(userID string, article *model.Article) error {
	if article == nil || !article.IsOwnedBy(userID) {
		return ErrForbidden
	}
	return nil
}
