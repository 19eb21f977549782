package service

import (
	"context"

	"github.com/blogback/blogback/internal/model"
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUserWithToken stores the user and their first token atomically.
	CreateUserWithToken(ctx context.Context, user *model.User, token *model.AccessToken) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// TokenStore persists personal access tokens.
type TokenStore interface {
	CreateToken(ctx context.Context, token *model.AccessToken) error
	GetTokenByHash(ctx context.Context, hash string) (*model.AccessToken, error)
	TouchToken(ctx context.Context, id string) error
	DeleteTokensByUserID(ctx context.Context, userID string) (int64, error)
}

// ArticleStore persists articles.
type ArticleStore interface {
	CreateArticle(ctx context.Context, article *model.Article) error
	GetArticle(ctx context.Context, id string) (*model.ArticleWithOwner, error)
	ListArticles(ctx context.Context, offset, limit int) ([]*model.ArticleWithOwner, error)
	CountArticles(ctx context.Context) (int64, error)
	UpdateArticle(ctx context.Context, article *model.Article) error
	DeleteArticle(ctx context.Context, id string) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}
