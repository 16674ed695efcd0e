package reload

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"tintcore/internal/resource"
)

// Trigger serializes reload requests. Requests that arrive while a cycle is
// running share that cycle's result instead of starting a second one.
type Trigger struct {
	compound *Compound
	src      resource.Source
	group    singleflight.Group

	mu   sync.Mutex
	last Report
}

// NewTrigger binds a compound to the source it reloads from.
func NewTrigger(c *Compound, src resource.Source) *Trigger {
	return &Trigger{compound: c, src: src}
}

// Fire runs a cycle, or joins the one in flight. shared is true when the
// result came from a cycle started by another caller.
func (t *Trigger) Fire(ctx context.Context) (report Report, shared bool, err error) {
	v, err, shared := t.group.Do("reload", func() (any, error) {
		r, err := t.compound.Reload(ctx, t.src)
		t.mu.Lock()
		t.last = r
		t.mu.Unlock()
		return r, err
	})
	r, _ := v.(Report)
	return r, shared, err
}

// Last returns the most recent report.
func (t *Trigger) Last() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
