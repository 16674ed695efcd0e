package reload

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CategoryReport summarizes one child in one cycle.
type CategoryReport struct {
	Name    string `json:"name"`
	Applied int    `json:"applied"`
	Error   string `json:"error,omitempty"`
}

// Report summarizes one reload cycle.
type Report struct {
	ID         uuid.UUID        `json:"id"`
	StartedAt  time.Time        `json:"started_at"`
	Duration   time.Duration    `json:"duration"`
	Categories []CategoryReport `json:"categories"`
	Degraded   bool             `json:"degraded"`
	Error      string           `json:"error,omitempty"`
}

// OK reports whether the cycle finished without error.
func (r Report) OK() bool { return r.Error == "" }

// Category returns the entry for name.
func (r Report) Category(name string) (CategoryReport, bool) {
	for _, c := range r.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return CategoryReport{}, false
}

// Journal persists reports. Implementations live in internal/journal.
type Journal interface {
	Record(ctx context.Context, r Report) error
}
