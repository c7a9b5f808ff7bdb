package store

import (
	"context"
	"errors"

	"newsharvest/internal/model"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("article not found")
)

// Store is the record store the ingestion pipeline and the read API consume.
// URL is the unique key: Upsert creates on first sight of a URL and updates
// in place afterwards.
type Store interface {
	Exists(ctx context.Context, url string) (bool, error)
	Upsert(ctx context.Context, article *model.Article) (created bool, err error)
	Get(ctx context.Context, id uuid.UUID) (*model.Article, error)
	List(ctx context.Context, source string, limit int) ([]model.Article, error)
}
