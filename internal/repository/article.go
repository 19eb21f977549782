package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/blogback/blogback/internal/model"
)

// Common errors for article repository operations.
var (
	ErrArticleNotFound = errors.New("article not found")
)

const articleWithOwnerSelect = `
	SELECT a.id, a.title, a.description, a.user_id, a.created_at, a.updated_at,
	       u.id, u.name
	FROM articles a
	JOIN users u ON u.id = a.user_id
`

// CreateArticle inserts a new article.
func (r *Repository) CreateArticle(ctx context.Context, article *model.Article) error {
	query := `
		INSERT INTO articles (id, title, description, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		article.ID,
		article.Title,
		article.Description,
		article.UserID,
		article.CreatedAt,
		article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}

	return nil
}

// GetArticle retrieves an article with its owner.
func (r *Repository) GetArticle(ctx context.Context, id string) (*model.ArticleWithOwner, error) {
	query := articleWithOwnerSelect + ` WHERE a.id = $1`

	article, err := scanArticleWithOwner(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

// ListArticles returns one page of articles, newest first, owners included.
func (r *Repository) ListArticles(ctx context.Context, offset, limit int) ([]*model.ArticleWithOwner, error) {
	query := articleWithOwnerSelect + `
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*model.ArticleWithOwner, 0, limit)
	for rows.Next() {
		article, err := scanArticleWithOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating articles: %w", err)
	}

	return articles, nil
}

// CountArticles returns the total number of articles.
func (r *Repository) CountArticles(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return n, nil
}

// UpdateArticle persists title and description. The owner column is never written.
func (r *Repository) UpdateArticle(ctx context.Context, article *model.Article) error {
	query := `
		UPDATE articles
		SET title = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	article.UpdatedAt = time.Now().UTC()
	result, err := r.pool.Exec(ctx, query,
		article.ID,
		article.Title,
		article.Description,
		article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// DeleteArticle removes an article permanently.
func (r *Repository) DeleteArticle(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrArticleNotFound
	}
	return nil
}

func scanArticleWithOwner(row pgx.Row) (*model.ArticleWithOwner, error) {
	var a model.ArticleWithOwner
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&a.UserID,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.Owner.ID,
		&a.Owner.Name,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
