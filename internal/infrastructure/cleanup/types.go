package cleanup

import (
	"time"

	"github.com/google/uuid"
)

// Entry represents a remote deletion that failed and should be retried by
// the sweeper.
type Entry struct {
	ID        string    `json:"id"`
	Locator   string    `json:"locator"`
	Retries   int       `json:"retries"`
	Timestamp time.Time `json:"timestamp"`

	bucketKey []byte
}

func (e *Entry) normalize() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
}
