package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogback/blogback/internal/handler/dto"
	"github.com/blogback/blogback/internal/model"
	"github.com/blogback/blogback/internal/service"
)

func sampleArticle() *model.ArticleWithOwner {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &model.ArticleWithOwner{
		Article: model.Article{
			ID:          "01HARTICLE",
			Title:       "Hello",
			Description: "World",
			UserID:      "01HOWNER",
			CreatedAt:   ts,
			UpdatedAt:   ts,
		},
		Owner: model.Owner{ID: "01HOWNER", Name: "Ada"},
	}
}

func decodeError(t *testing.T, body []byte) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestArticleHandler_List(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		wantPage int
	}{
		{"default page", "/articles", 1},
		{"explicit page", "/articles?page=3", 3},
		{"zero page", "/articles?page=0", 1},
		{"negative page", "/articles?page=-2", 1},
		{"garbage page", "/articles?page=abc", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeArticleService{page: &model.Page[*model.ArticleWithOwner]{
				Items:      []*model.ArticleWithOwner{sampleArticle()},
				Page:       tt.wantPage,
				PerPage:    model.DefaultPageSize,
				Total:      21,
				TotalPages: 3,
			}}
			h := NewArticleHandler(svc, discardLogger())

			rec := serve(t, http.MethodGet, "/articles", tt.target, "", "", h.List)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantPage, svc.gotPage)

			var resp dto.ArticleListResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Len(t, resp.Data, 1)
			assert.Equal(t, "Ada", resp.Data[0].Owner.Name)
			assert.Equal(t, dto.Pagination{Page: tt.wantPage, PerPage: 10, Total: 21, TotalPages: 3}, *resp.Pagination)
		})
	}
}

func TestArticleHandler_ListEmptyIsArray(t *testing.T) {
	svc := &fakeArticleService{page: &model.Page[*model.ArticleWithOwner]{Page: 1, PerPage: 10, TotalPages: 1}}
	h := NewArticleHandler(svc, discardLogger())

	rec := serve(t, http.MethodGet, "/articles", "/articles", "", "", h.List)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestArticleHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &fakeArticleService{article: sampleArticle()}
		h := NewArticleHandler(svc, discardLogger())

		rec := serve(t, http.MethodGet, "/articles/{id}", "/articles/01HARTICLE", "", "", h.Get)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "01HARTICLE", svc.gotID)

		var resp dto.ArticleEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Hello", resp.Data.Title)
		assert.Equal(t, "01HOWNER", resp.Data.UserID)
		assert.Equal(t, dto.OwnerResponse{ID: "01HOWNER", Name: "Ada"}, resp.Data.Owner)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeArticleService{err: service.ErrNotFound}
		h := NewArticleHandler(svc, discardLogger())

		rec := serve(t, http.MethodGet, "/articles/{id}", "/articles/missing", "", "", h.Get)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, CodeNotFound, decodeError(t, rec.Body.Bytes()).Code)
	})
}

func TestArticleHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeArticleService{article: sampleArticle()}
		h := NewArticleHandler(svc, discardLogger())

		rec := serve(t, http.MethodPost, "/articles", "/articles",
			`{"title":"Hello","description":"World","user_id":"someone-else"}`, "01HOWNER", h.Create)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "01HOWNER", svc.gotUser)
		assert.Equal(t, service.CreateArticleInput{Title: ptr("Hello"), Description: ptr("World")}, svc.gotInput)
	})

	t.Run("validation failure", func(t *testing.T) {
		v := service.NewValidationError()
		v.Add("title", "The title field is required.")
		svc := &fakeArticleService{err: v}
		h := NewArticleHandler(svc, discardLogger())

		rec := serve(t, http.MethodPost, "/articles", "/articles", `{}`, "01HOWNER", h.Create)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		resp := decodeError(t, rec.Body.Bytes())
		assert.Equal(t, CodeValidationFailed, resp.Code)
		assert.Equal(t, "The title field is required.", resp.Message)
		assert.Equal(t, []string{"The title field is required."}, resp.Errors["title"])
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := &fakeArticleService{}
		h := NewArticleHandler(svc, discardLogger())

		rec := serve(t, http.MethodPost, "/articles", "/articles", `{"title":`, "01HOWNER", h.Create)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, svc.gotUser, "service must not be called")
	})
}

func TestArticleHandler_Update(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"put ok", http.MethodPut, nil, http.StatusOK, ""},
		{"patch ok", http.MethodPatch, nil, http.StatusOK, ""},
		{"not owner", http.MethodPut, service.ErrForbidden, http.StatusForbidden, CodeForbidden},
		{"unknown id", http.MethodPatch, service.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"store failure", http.MethodPut, errors.New("db down"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeArticleService{article: sampleArticle(), err: tt.err}
			h := NewArticleHandler(svc, discardLogger())

			rec := serve(t, tt.method, "/articles/{id}", "/articles/01HARTICLE",
				`{"title":"New","user_id":"hijack"}`, "01HUSER", h.Update)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "01HUSER", svc.gotUser)
			assert.Equal(t, "01HARTICLE", svc.gotID)
			assert.Equal(t, model.ArticlePatch{Title: ptr("New")}, svc.gotPatch)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec.Body.Bytes()).Code)
			}
		})
	}
}

func TestArticleHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"not owner", service.ErrForbidden, http.StatusForbidden},
		{"unknown id", service.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeArticleService{err: tt.err}
			h := NewArticleHandler(svc, discardLogger())

			rec := serve(t, http.MethodDelete, "/articles/{id}", "/articles/01HARTICLE", "", "01HUSER", h.Delete)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "01HUSER", svc.gotUser)
			if tt.wantStatus == http.StatusNoContent {
				assert.Empty(t, rec.Body.String())
			}
		})
	}
}
