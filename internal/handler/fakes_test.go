package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/blogback/blogback/internal/auth"
	"github.com/blogback/blogback/internal/model"
	"github.com/blogback/blogback/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(s string) *string { return &s }

// fakeArticleService records calls and returns canned results.
type fakeArticleService struct {
	page     *model.Page[*model.ArticleWithOwner]
	article  *model.ArticleWithOwner
	err      error
	gotPage  int
	gotUser  string
	gotID    string
	gotInput service.CreateArticleInput
	gotPatch model.ArticlePatch
}

func (f *fakeArticleService) List(_ context.Context, page int) (*model.Page[*model.ArticleWithOwner], error) {
	f.gotPage = page
	return f.page, f.err
}

func (f *fakeArticleService) Get(_ context.Context, id string) (*model.ArticleWithOwner, error) {
	f.gotID = id
	return f.article, f.err
}

func (f *fakeArticleService) Create(_ context.Context, userID string, input service.CreateArticleInput) (*model.ArticleWithOwner, error) {
	f.gotUser, f.gotInput = userID, input
	return f.article, f.err
}

func (f *fakeArticleService) Update(_ context.Context, userID, id string, patch model.ArticlePatch) (*model.ArticleWithOwner, error) {
	f.gotUser, f.gotID, f.gotPatch = userID, id, patch
	return f.article, f.err
}

func (f *fakeArticleService) Delete(_ context.Context, userID, id string) error {
	f.gotUser, f.gotID = userID, id
	return f.err
}

// fakeAuthService records calls and returns canned results.
type fakeAuthService struct {
	user        *model.User
	token       string
	err         error
	gotUser     string
	gotRegister service.RegisterInput
	gotLogin    service.LoginInput
	gotPatch    model.UserPatch
	gotPassword service.ChangePasswordInput
	logouts     int
}

func (f *fakeAuthService) Register(_ context.Context, input service.RegisterInput) (*model.User, string, error) {
	f.gotRegister = input
	return f.user, f.token, f.err
}

func (f *fakeAuthService) Login(_ context.Context, input service.LoginInput) (string, error) {
	f.gotLogin = input
	return f.token, f.err
}

func (f *fakeAuthService) Logout(_ context.Context, userID string) error {
	f.gotUser = userID
	f.logouts++
	return f.err
}

func (f *fakeAuthService) CurrentUser(_ context.Context, userID string) (*model.User, error) {
	f.gotUser = userID
	return f.user, f.err
}

func (f *fakeAuthService) UpdateProfile(_ context.Context, userID string, patch model.UserPatch) (*model.User, error) {
	f.gotUser, f.gotPatch = userID, patch
	return f.user, f.err
}

func (f *fakeAuthService) ChangePassword(_ context.Context, userID string, input service.ChangePasswordInput) error {
	f.gotUser, f.gotPassword = userID, input
	return f.err
}

// serve routes a single request through a chi router so URL params resolve.
// A non-empty userID is injected as the authenticated identity.
func serve(t *testing.T, method, pattern, target, body, userID string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req = req.WithContext(auth.ContextWithAuth(req.Context(), &model.AuthContext{
			TokenID:   "01HTOKEN",
			UserID:    userID,
			Abilities: []string{model.AbilityAll},
		}))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
