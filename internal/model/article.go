package model

import (
	"time"

	"github.com/google/uuid"
)

// NotFound is the sentinel stored in place of a text field the extractors
// could not locate. Persisted records never carry empty strings.
const NotFound = "Not Found"

// PublishedAtLayout is the wire format for extracted publication dates.
const PublishedAtLayout = "02.01.2006 15:04:05"

// Article is a persisted, normalized article keyed by its canonical URL.
type Article struct {
	ID          uuid.UUID  `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	PlainBody   string     `json:"plain_body"`
	Excerpt     string     `json:"excerpt,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
