package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blogback/blogback/internal/auth"
	"github.com/blogback/blogback/internal/model"
	"github.com/blogback/blogback/internal/repository"
)

// fakeStore is an in-memory implementation of UserStore, TokenStore and ArticleStore.
type fakeStore struct {
	mu       sync.Mutex
	users    map[string]model.User
	tokens   map[string]model.AccessToken // by hash
	articles map[string]model.Article

	failCount       error
	failCreateToken error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]model.User),
		tokens:   make(map[string]model.AccessToken),
		articles: make(map[string]model.Article),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertUser(user)
}

// CreateUserWithToken commits both rows or neither.
func (f *fakeStore) CreateUserWithToken(_ context.Context, user *model.User, token *model.AccessToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateToken != nil {
		for _, u := range f.users {
			if strings.EqualFold(u.Email, user.Email) {
				return repository.ErrEmailExists
			}
		}
		return f.failCreateToken
	}
	if err := f.insertUser(user); err != nil {
		return err
	}
	f.tokens[token.TokenHash] = *token
	return nil
}

// insertUser must be called with mu held.
func (f *fakeStore) insertUser(user *model.User) error {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrEmailExists
		}
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) UpdateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, u := range f.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return repository.ErrEmailExists
		}
	}
	user.UpdatedAt = time.Now().UTC()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, userID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	f.users[userID] = u
	return nil
}

func (f *fakeStore) CreateToken(_ context.Context, token *model.AccessToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateToken != nil {
		return f.failCreateToken
	}
	f.tokens[token.TokenHash] = *token
	return nil
}

func (f *fakeStore) GetTokenByHash(_ context.Context, hash string) (*model.AccessToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[hash]
	if !ok {
		return nil, repository.ErrTokenNotFound
	}
	return &t, nil
}

func (f *fakeStore) TouchToken(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	for h, t := range f.tokens {
		if t.ID == id {
			t.LastUsedAt = &now
			f.tokens[h] = t
		}
	}
	return nil
}

func (f *fakeStore) DeleteTokensByUserID(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for h, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, h)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) tokenCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

func (f *fakeStore) CreateArticle(_ context.Context, article *model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.articles[article.ID] = *article
	return nil
}

func (f *fakeStore) GetArticle(_ context.Context, id string) (*model.ArticleWithOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[id]
	if !ok {
		return nil, repository.ErrArticleNotFound
	}
	return f.withOwner(a), nil
}

func (f *fakeStore) ListArticles(_ context.Context, offset, limit int) ([]*model.ArticleWithOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if offset < 0 {
		return nil, errors.New("OFFSET must not be negative")
	}
	all := make([]model.Article, 0, len(f.articles))
	for _, a := range f.articles {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	out := make([]*model.ArticleWithOwner, 0, limit)
	for i := offset; i < len(all) && len(out) < limit; i++ {
		out = append(out, f.withOwner(all[i]))
	}
	return out, nil
}

func (f *fakeStore) CountArticles(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCount != nil {
		return 0, f.failCount
	}
	return int64(len(f.articles)), nil
}

func (f *fakeStore) UpdateArticle(_ context.Context, article *model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.articles[article.ID]
	if !ok {
		return repository.ErrArticleNotFound
	}
	existing.Title = article.Title
	existing.Description = article.Description
	existing.UpdatedAt = time.Now().UTC()
	f.articles[article.ID] = existing
	return nil
}

func (f *fakeStore) DeleteArticle(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.articles[id]; !ok {
		return repository.ErrArticleNotFound
	}
	delete(f.articles, id)
	return nil
}

// withOwner must be called with mu held.
func (f *fakeStore) withOwner(a model.Article) *model.ArticleWithOwner {
	u := f.users[a.UserID]
	return &model.ArticleWithOwner{Article: a, Owner: model.Owner{ID: u.ID, Name: u.Name}}
}

var errBoom = errors.New("boom")

// testHasher uses cheap Argon2id params.
func testHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(auth.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
}

func ptr(s string) *string { return &s }
