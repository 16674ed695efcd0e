package reload

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tintcore/internal/logging"
	"tintcore/internal/resource"
)

// Prepared holds each child's prepared data in declaration order.
type Prepared struct {
	data []any
}

// PrepareResult is delivered by PrepareAsync.
type PrepareResult struct {
	Prepared Prepared
	Err      error
}

// Compound runs its children in a fixed order. Declaration order encodes
// producer to consumer dependencies, so children are never prepared or
// processed concurrently.
type Compound struct {
	children []Child
	log      logging.Logger
	metrics  MetricsRecorder
	tracer   trace.Tracer
	journal  Journal
	now      func() time.Time

	mu       sync.Mutex
	degraded atomic.Bool
}

// Option configures a Compound.
type Option func(*Compound)

// WithLogger sets the logger. Nil keeps the noop logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Compound) { c.log = logging.OrNoop(l) }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Compound) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracerProvider sets where phase spans go. The global provider is used
// otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Compound) {
		if tp != nil {
			c.tracer = tp.Tracer("tintcore/reload")
		}
	}
}

// WithJournal records every finished Reload report.
func WithJournal(j Journal) Option {
	return func(c *Compound) { c.journal = j }
}

// WithClock overrides time.Now for reports.
func WithClock(now func() time.Time) Option {
	return func(c *Compound) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCompound builds a compound over children in declaration order.
func NewCompound(children []Child, opts ...Option) *Compound {
	c := &Compound{
		children: children,
		log:      logging.Noop(),
		metrics:  noopMetrics{},
		tracer:   otel.Tracer("tintcore/reload"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Names lists the children in declaration order.
func (c *Compound) Names() []string {
	out := make([]string, len(c.children))
	for i, ch := range c.children {
		out[i] = ch.Name()
	}
	return out
}

// Degraded reports whether a child failed during the last cycle that reached
// process or apply.
func (c *Compound) Degraded() bool { return c.degraded.Load() }

// Prepare runs every child's prepare in order. The first failure aborts.
func (c *Compound) Prepare(ctx context.Context, src resource.Source) (Prepared, error) {
	ctx, span := c.tracer.Start(ctx, "reload.prepare")
	defer span.End()
	start := time.Now()
	p := Prepared{data: make([]any, len(c.children))}
	for i, ch := range c.children {
		if err := ctx.Err(); err != nil {
			c.fail(span, err, "prepare canceled")
			c.metrics.Observe(ctx, "prepare", false, time.Since(start))
			return Prepared{}, err
		}
		chStart := time.Now()
		data, err := ch.prepare(ctx, src)
		c.metrics.Observe(ctx, "prepare/"+ch.Name(), err == nil, time.Since(chStart))
		if err != nil {
			c.log.Error("category failed to prepare resources", "category", ch.Name(), "error", err)
			c.fail(span, err, "prepare failed")
			c.metrics.Observe(ctx, "prepare", false, time.Since(start))
			return Prepared{}, fmt.Errorf("reload: prepare %s: %w", ch.Name(), err)
		}
		p.data[i] = data
	}
	c.metrics.Observe(ctx, "prepare", true, time.Since(start))
	span.SetStatus(codes.Ok, "prepared")
	return p, nil
}

// PrepareAsync runs Prepare on its own goroutine. The channel receives
// exactly one result.
func (c *Compound) PrepareAsync(ctx context.Context, src resource.Source) <-chan PrepareResult {
	out := make(chan PrepareResult, 1)
	go func() {
		p, err := c.Prepare(ctx, src)
		out <- PrepareResult{Prepared: p, Err: err}
	}()
	return out
}

// Apply resets every child, then processes every child, then applies every
// child. The first process or apply failure is logged with the child's name,
// marks the compound degraded and aborts the remaining children. Children
// already applied keep their overrides.
func (c *Compound) Apply(ctx context.Context, p Prepared) ([]CategoryReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(p.data) != len(c.children) {
		return nil, fmt.Errorf("reload: prepared data for %d categories, have %d", len(p.data), len(c.children))
	}
	ctx, span := c.tracer.Start(ctx, "reload.apply")
	defer span.End()

	reports := make([]CategoryReport, len(c.children))
	for i, ch := range c.children {
		reports[i].Name = ch.Name()
	}

	for i, ch := range c.children {
		if err := c.phase(ctx, "reset", ch, func(ctx context.Context) error { return ch.reset(ctx) }); err != nil {
			// Reset failures leave some baseline unrestored; keep going so
			// every registry is still cleared.
			reports[i].Error = err.Error()
			c.degraded.Store(true)
		}
	}
	for i, ch := range c.children {
		data := p.data[i]
		if err := c.phase(ctx, "process", ch, func(ctx context.Context) error { return ch.process(ctx, data) }); err != nil {
			return c.abort(span, reports, i, "process", err)
		}
	}
	for i, ch := range c.children {
		err := c.phase(ctx, "apply", ch, func(ctx context.Context) error { return ch.apply(ctx) })
		reports[i].Applied = ch.applied()
		if err != nil {
			return c.abort(span, reports, i, "apply", err)
		}
	}
	for _, r := range reports {
		if r.Error != "" {
			span.SetStatus(codes.Error, "reset failed")
			return reports, fmt.Errorf("reload: reset %s: %s", r.Name, r.Error)
		}
	}
	c.degraded.Store(false)
	span.SetStatus(codes.Ok, "applied")
	return reports, nil
}

func (c *Compound) abort(span trace.Span, reports []CategoryReport, i int, phase string, err error) ([]CategoryReport, error) {
	name := c.children[i].Name()
	c.degraded.Store(true)
	reports[i].Error = err.Error()
	c.fail(span, err, phase+" failed")
	return reports, fmt.Errorf("reload: %s %s: %w", phase, name, err)
}

func (c *Compound) phase(ctx context.Context, phase string, ch Child, fn func(context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "reload."+phase, trace.WithAttributes(attribute.String("category", ch.Name())))
	defer span.End()
	start := time.Now()
	err := fn(ctx)
	c.metrics.Observe(ctx, phase+"/"+ch.Name(), err == nil, time.Since(start))
	if err != nil {
		c.log.Error("category failed", "category", ch.Name(), "phase", phase, "error", err)
		c.fail(span, err, phase+" failed")
		return err
	}
	if phase == "apply" {
		c.log.Info("applied overrides", "category", ch.Name(), "count", ch.applied())
	}
	return nil
}

func (c *Compound) fail(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}

// Reload runs one full cycle: prepare off the caller's goroutine, then
// apply on it. The report is journaled when a journal is configured.
func (c *Compound) Reload(ctx context.Context, src resource.Source) (Report, error) {
	started := c.now()
	report := Report{ID: uuid.New(), StartedAt: started}

	res := <-c.PrepareAsync(ctx, src)
	err := res.Err
	if err == nil {
		report.Categories, err = c.Apply(ctx, res.Prepared)
	}
	report.Duration = c.now().Sub(started)
	report.Degraded = c.Degraded()
	if err != nil {
		report.Error = err.Error()
	}
	c.metrics.Observe(ctx, "cycle", err == nil, report.Duration)
	if rr, ok := c.metrics.(ReportRecorder); ok {
		rr.RecordReport(report)
	}
	c.log.Info("reload cycle finished", "id", report.ID.String(), "duration", report.Duration, "degraded", report.Degraded, "ok", err == nil)
	if c.journal != nil {
		if jerr := c.journal.Record(ctx, report); jerr != nil {
			c.log.Warn("failed to journal reload report", "id", report.ID.String(), "error", jerr)
		}
	}
	return report, err
}
