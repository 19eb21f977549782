package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/blogback/blogback/internal/metrics"
	"github.com/blogback/blogback/internal/model"
	"github.com/blogback/blogback/internal/repository"
)

// ArticleService handles article business logic.
type ArticleService struct {
	articles ArticleStore
	logger   *slog.Logger
	metrics  metrics.Recorder
	pageSize int
}

// NewArticleService creates a new ArticleService.
func NewArticleService(articles ArticleStore, logger *slog.Logger, recorder metrics.Recorder) *ArticleService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ArticleService{
		articles: articles,
		logger:   logger,
		metrics:  recorder,
		pageSize: model.DefaultPageSize,
	}
}

// List returns one page of articles, newest first. Pages below 1 are treated as 1.
func (s *ArticleService) List(ctx context.Context, page int) (*model.Page[*model.ArticleWithOwner], error) {
	if page < 1 {
		page = 1
	}

	var (
		total int64
		items []*model.ArticleWithOwner
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		n, err := s.articles.CountArticles(egCtx)
		if err != nil {
			return fmt.Errorf("count articles: %w", err)
		}
		total = n
		return nil
	})
	eg.Go(func() error {
		rows, err := s.articles.ListArticles(egCtx, model.OffsetFor(page, s.pageSize), s.pageSize)
		if err != nil {
			return fmt.Errorf("list articles: %w", err)
		}
		items = rows
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &model.Page[*model.ArticleWithOwner]{
		Items:      items,
		Page:       page,
		PerPage:    s.pageSize,
		Total:      total,
		TotalPages: model.TotalPagesFor(total, s.pageSize),
	}, nil
}

// Get returns a single article with its owner.
func (s *ArticleService) Get(ctx context.Context, id string) (*model.ArticleWithOwner, error) {
	article, err := s.articles.GetArticle(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}

// CreateArticleInput defines input for creating an article.
type CreateArticleInput struct {
	Title       *string
	Description *string
}

// Create stores a new article owned by userID.
func (s *ArticleService) Create(ctx context.Context, userID string, input CreateArticleInput) (*model.ArticleWithOwner, error) {
	v := NewValidationError()
	if requireString(v, "title", input.Title) {
		maxLength(v, "title", *input.Title, maxStringLength)
	}
	requireString(v, "description", input.Description)
	if err := v.orNil(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	article := &model.Article{
		ID:          ulid.Make().String(),
		Title:       *input.Title,
		Description: *input.Description,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.articles.CreateArticle(ctx, article); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	s.metrics.IncArticleCreated()

	return s.Get(ctx, article.ID)
}

// Update applies patch to the article. Input is validated first, then the
// article is loaded (ErrNotFound) and the ownership gate applied (ErrForbidden).
func (s *ArticleService) Update(ctx context.Context, userID, id string, patch model.ArticlePatch) (*model.ArticleWithOwner, error) {
	v := NewValidationError()
	if presentString(v, "title", patch.Title) {
		maxLength(v, "title", *patch.Title, maxStringLength)
	}
	presentString(v, "description", patch.Description)
	if err := v.orNil(); err != nil {
		return nil, err
	}

	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(userID, &article.Article, "article.update"); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return article, nil
	}

	patch.Apply(&article.Article)
	if err := s.articles.UpdateArticle(ctx, &article.Article); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	s.metrics.IncArticleUpdated()

	return article, nil
}

// Delete removes the article if userID owns it.
func (s *ArticleService) Delete(ctx context.Context, userID, id string) error {
	article, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(userID, &article.Article, "article.delete"); err != nil {
		return err
	}

	if err := s.articles.DeleteArticle(ctx, id); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete article: %w", err)
	}
	s.metrics.IncArticleDeleted()

	return nil
}

func (s *ArticleService) authorize(userID string, article *model.Article, action string) error {
	if err := Authorize(userID, article); err != nil {
		s.metrics.IncAuthorizationDenied(action)
		s.logger.Warn("authorization denied",
			slog.String("action", action),
			slog.String("user_id", userID),
			slog.String("article_id", article.ID),
			slog.String("owner_id", article.UserID),
		)
		return err
	}
	return nil
}
