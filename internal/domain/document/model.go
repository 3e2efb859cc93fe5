package document

import "time"

// Document is one JSON object of a collection.
type Document struct {
	Collection string
	ID         string
	Body       map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
