package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"newsharvest/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *HybridStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	st, err := NewHybridStore(mr.Addr(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

func testArticle(url string) *model.Article {
	published := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	return &model.Article{
		URL:         url,
		Title:       "Testowy artykuł",
		Body:        "<article><p>Big Content</p></article>",
		PlainBody:   "Big Content",
		PublishedAt: &published,
	}
}

func TestHybridStore_UpsertCreatesThenUpdates(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	article := testArticle("https://example.com/a")
	created, err := st.Upsert(ctx, article)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, article.ID.String(), "00000000-0000-0000-0000-000000000000")

	// second write under the same URL updates in place
	revised := testArticle("https://example.com/a")
	revised.Title = "Poprawiony tytuł"
	created, err = st.Upsert(ctx, revised)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, article.ID, revised.ID, "update must reuse the original ID")

	got, err := st.Get(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, "Poprawiony tytuł", got.Title)
	assert.Equal(t, "<article><p>Big Content</p></article>", got.Body)
	assert.Equal(t, "Big Content", got.PlainBody)
	require.NotNil(t, got.PublishedAt)
	assert.Equal(t, "01.03.2024 10:00:00", got.PublishedAt.Format(model.PublishedAtLayout))
}

func TestHybridStore_Exists(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ok, err := st.Exists(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = st.Upsert(ctx, testArticle("https://example.com/a"))
	require.NoError(t, err)

	ok, err = st.Exists(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, ok)

	// the index is exact: a different spelling is a different key
	ok, err = st.Exists(ctx, "https://example.com/a/")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHybridStore_MetadataStaysLight(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	st, err := NewHybridStore(mr.Addr(), t.TempDir())
	require.NoError(t, err)
	defer st.Close()

	article := testArticle("https://example.com/a")
	_, err = st.Upsert(context.Background(), article)
	require.NoError(t, err)

	// Redis must hold the metadata but not the heavy content
	val, err := mr.Get("article:" + article.ID.String())
	require.NoError(t, err)

	var meta model.Article
	require.NoError(t, json.Unmarshal([]byte(val), &meta))
	assert.Equal(t, "Testowy artykuł", meta.Title)
	assert.Empty(t, meta.Body, "Redis should NOT store the heavy content")
	assert.Empty(t, meta.PlainBody)
}

func TestHybridStore_ListWithSourceFilter(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, url := range []string{
		"https://example.com/a",
		"https://news.example.org/b",
		"https://example.com/c",
	} {
		_, err := st.Upsert(ctx, testArticle(url))
		require.NoError(t, err)
	}

	all, err := st.List(ctx, "", 50)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	// newest first
	assert.Equal(t, "https://example.com/c", all[0].URL)

	filtered, err := st.List(ctx, "EXAMPLE.COM", 50)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
	for _, a := range filtered {
		assert.Contains(t, a.URL, "example.com")
	}
}

func TestHybridStore_FailedContentWriteLeavesNoURLClaim(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	// Redis-only mode: any content write must fail
	st, err := NewHybridStore(mr.Addr(), "")
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()

	_, err = st.Upsert(ctx, testArticle("https://example.com/a"))
	require.Error(t, err)

	// The URL must not be marked ingested, or later runs would skip it
	// forever with no body stored.
	ok, err := st.Exists(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.False(t, ok, "failed upsert must not claim the URL as ingested")

	articles, err := st.List(ctx, "", 50)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestHybridStore_GetMissing(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
