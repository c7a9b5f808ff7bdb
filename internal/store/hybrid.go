package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"newsharvest/internal/model"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const recentListLen = 500

// HybridStore combines Redis (metadata, URL index, recency list) and Badger
// (heavy body markup and plain text).
type HybridStore struct {
	rdb *redis.Client
	db  *badger.DB
}

// NewHybridStore initializes both databases.
// Pass badgerPath="" to run in "Redis-Only" mode (metadata only).
func NewHybridStore(redisAddr string, badgerPath string) (*HybridStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	var db *badger.DB
	var err error

	if badgerPath != "" {
		opts := badger.DefaultOptions(badgerPath)
		opts.Logger = nil // Silence default logger
		db, err = badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger: %w", err)
		}
	}

	return &HybridStore{rdb: rdb, db: db}, nil
}

// Close cleans up connections
func (s *HybridStore) Close() {
	if s.rdb != nil {
		s.rdb.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func articleKey(id uuid.UUID) string { return "article:" + id.String() }
func urlKey(url string) string       { return "url:" + url }

// bodyPayload is the heavy part stored in Badger, keyed by article ID.
type bodyPayload struct {
	Body      string `json:"body"`
	PlainBody string `json:"plain_body"`
}

// Exists reports whether a record is already stored under the exact URL.
func (s *HybridStore) Exists(ctx context.Context, url string) (bool, error) {
	n, err := s.rdb.Exists(ctx, urlKey(url)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Upsert stores an article keyed by its URL. The first write for a URL
// creates a record and reports created=true; later writes reuse the existing
// ID and creation time and update the remaining fields in place.
func (s *HybridStore) Upsert(ctx context.Context, article *model.Article) (bool, error) {
	created := false

	idStr, err := s.rdb.Get(ctx, urlKey(article.URL)).Result()
	switch {
	case err == redis.Nil:
		created = true
		if article.ID == uuid.Nil {
			article.ID = uuid.New()
		}
		article.CreatedAt = time.Now()
	case err != nil:
		return false, err
	default:
		id, perr := uuid.Parse(idStr)
		if perr != nil {
			return false, fmt.Errorf("corrupt url index for %s: %w", article.URL, perr)
		}
		article.ID = id
		if existing, gerr := s.getMeta(ctx, id); gerr == nil {
			article.CreatedAt = existing.CreatedAt
		}
	}
	article.UpdatedAt = time.Now()

	// Metadata to Redis, content to Badger
	meta := *article
	meta.Body = ""
	meta.PlainBody = ""

	data, err := json.Marshal(meta)
	if err != nil {
		return false, err
	}

	// Content goes to Badger first: a failed content write must leave no
	// claim on the URL, otherwise every later run skips it via Exists while
	// the body is missing. An orphaned Badger payload is harmless; a
	// half-written URL index is not.
	if article.Body != "" || article.PlainBody != "" {
		if s.db == nil {
			return false, fmt.Errorf("cannot save content: badgerdb is not initialized")
		}
		payload, err := json.Marshal(bodyPayload{Body: article.Body, PlainBody: article.PlainBody})
		if err != nil {
			return false, err
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(article.ID.String()), payload)
		})
		if err != nil {
			return false, err
		}
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, articleKey(article.ID), data, 0)
	pipe.Set(ctx, urlKey(article.URL), article.ID.String(), 0)
	if created {
		pipe.LPush(ctx, "list:recent", article.ID.String())
		pipe.LTrim(ctx, "list:recent", 0, recentListLen-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return created, nil
}

func (s *HybridStore) getMeta(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	val, err := s.rdb.Get(ctx, articleKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var article model.Article
	if err := json.Unmarshal(val, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// Get combines data: metadata from Redis + content from Badger.
func (s *HybridStore) Get(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	article, err := s.getMeta(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.db != nil {
		err = s.db.View(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(id.String()))
			if err != nil {
				return err
			}
			return item.Value(func(val []byte) error {
				var payload bodyPayload
				if err := json.Unmarshal(val, &payload); err != nil {
					return err
				}
				article.Body = payload.Body
				article.PlainBody = payload.PlainBody
				return nil
			})
		})

		if err != nil && err != badger.ErrKeyNotFound {
			return nil, err
		}
	}

	return article, nil
}

// List fetches recent articles, newest first, optionally keeping only those
// whose URL contains the source substring (case-insensitive).
func (s *HybridStore) List(ctx context.Context, source string, limit int) ([]model.Article, error) {
	ids, err := s.rdb.LRange(ctx, "list:recent", 0, recentListLen-1).Result()
	if err != nil {
		return nil, err
	}

	source = strings.ToLower(source)

	var articles []model.Article
	for _, idStr := range ids {
		if limit > 0 && len(articles) >= limit {
			break
		}
		val, err := s.rdb.Get(ctx, "article:"+idStr).Bytes()
		if err == redis.Nil {
			continue
		} else if err != nil {
			return nil, err
		}

		var a model.Article
		if err := json.Unmarshal(val, &a); err != nil {
			continue
		}
		if source != "" && !strings.Contains(strings.ToLower(a.URL), source) {
			continue
		}
		articles = append(articles, a)
	}

	return articles, nil
}
