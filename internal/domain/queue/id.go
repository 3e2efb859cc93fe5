package queue

import "github.com/google/uuid"

// NewID returns a collision resistant, time ordered id for a new write.
// The id is generated once and reused by every retry of the same write.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
