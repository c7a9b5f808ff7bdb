package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsharvest/internal/model"
	"newsharvest/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	articles map[uuid.UUID]*model.Article
}

func (f *fakeStore) Exists(ctx context.Context, url string) (bool, error) { return false, nil }

func (f *fakeStore) Upsert(ctx context.Context, a *model.Article) (bool, error) { return false, nil }

func (f *fakeStore) Get(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	a, ok := f.articles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) List(ctx context.Context, source string, limit int) ([]model.Article, error) {
	var out []model.Article
	for _, a := range f.articles {
		if source != "" && !strings.Contains(a.URL, source) {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func newTestServer(articles ...*model.Article) *Server {
	st := &fakeStore{articles: map[uuid.UUID]*model.Article{}}
	for _, a := range articles {
		st.articles[a.ID] = a
	}
	return NewServer(st, zap.NewNop())
}

func TestHandleList_SourceFilter(t *testing.T) {
	srv := newTestServer(
		&model.Article{ID: uuid.New(), URL: "https://example.com/a", Title: "A"},
		&model.Article{ID: uuid.New(), URL: "https://news.example.org/b", Title: "B"},
	)

	req := httptest.NewRequest(http.MethodGet, "/articles?source=example.com", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []model.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Title)
}

func TestHandleGet(t *testing.T) {
	article := &model.Article{
		ID:        uuid.New(),
		URL:       "https://example.com/a",
		Title:     "A",
		Body:      "<article>treść</article>",
		PlainBody: "treść",
	}
	srv := newTestServer(article)

	req := httptest.NewRequest(http.MethodGet, "/articles/"+article.ID.String(), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, article.Body, got.Body)
}

func TestHandleGet_BadAndMissingIDs(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/articles/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/articles/"+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
