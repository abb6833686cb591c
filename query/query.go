// Package query reads a query from an input, asks the health endpoint for its
// status and writes the indented body to an output.
//
// The input value is read on every invocation but is not sent to the server.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/a-h/healthquery/format"
	"github.com/a-h/healthquery/models"
)

type Input interface {
	Value() string
}

type Output interface {
	SetText(text string)
}

type HealthGetter interface {
	HealthGet(ctx context.Context) (resp models.HealthGetResponse, status int, err error)
}

type Option func(*Handler)

func WithOrdering(o models.Ordering) Option {
	return func(h *Handler) {
		h.ordering = o
	}
}

// WithTimeout limits each fetch. Zero, the default, waits forever.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.timeout = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

func New(log *slog.Logger, getter HealthGetter, input Input, output Output, opts ...Option) *Handler {
	h := &Handler{
		log:      log,
		getter:   getter,
		input:    input,
		output:   output,
		ordering: models.OrderingResponse,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type Handler struct {
	log      *slog.Logger
	getter   HealthGetter
	input    Input
	output   Output
	ordering models.Ordering
	timeout  time.Duration
	now      func() time.Time

	seq      atomic.Uint64
	inFlight atomic.Int64

	m       sync.Mutex
	applied uint64
}

// Request is a single invocation.
type Request struct {
	Seq     uint64
	Query   string
	Started time.Time
}

// Result is the outcome of an invocation. Err is nil on success.
type Result struct {
	Request
	StatusCode int
	Body       models.HealthGetResponse
	Text       string
	Duration   time.Duration
	Err        error

	// Applied is set when Text was written to the output.
	Applied bool
	// Stale is set when a newer invocation had already been applied.
	Stale bool
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Begin reads the input and assigns the next sequence number.
func (h *Handler) Begin() Request {
	return Request{
		Seq:     h.seq.Add(1),
		Query:   h.input.Value(),
		Started: h.now(),
	}
}

// Fetch calls the health endpoint and formats the body. The output is not
// touched.
func (h *Handler) Fetch(ctx context.Context, req Request) (res Result) {
	h.inFlight.Add(1)
	defer h.inFlight.Add(-1)

	res.Request = req
	defer func() {
		res.Duration = h.now().Sub(req.Started)
	}()

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	h.log.Debug("fetching health", slog.Uint64("seq", req.Seq), slog.String("query", req.Query))
	res.Body, res.StatusCode, res.Err = h.getter.HealthGet(ctx)
	if res.Err != nil {
		res.Err = fmt.Errorf("failed to get health: %w", res.Err)
		return res
	}
	res.Text, res.Err = format.Indent(res.Body)
	if res.Err != nil {
		res.Err = fmt.Errorf("failed to format health: %w", res.Err)
	}
	return res
}

// Apply writes a successful result to the output, subject to the ordering.
// Failed results are logged and never written.
func (h *Handler) Apply(res Result) Result {
	if res.Err != nil {
		h.log.Warn("health query failed", slog.Uint64("seq", res.Seq), slog.Duration("duration", res.Duration), slog.Any("error", res.Err))
		return res
	}

	h.m.Lock()
	defer h.m.Unlock()
	if h.ordering == models.OrderingTrigger && res.Seq < h.applied {
		res.Stale = true
		h.log.Debug("discarding stale response", slog.Uint64("seq", res.Seq), slog.Uint64("applied", h.applied))
		return res
	}
	h.applied = max(h.applied, res.Seq)
	h.output.SetText(res.Text)
	res.Applied = true
	h.log.Info("health query complete", slog.Uint64("seq", res.Seq), slog.Int("status", res.StatusCode), slog.Duration("duration", res.Duration))
	return res
}

// Ask runs one invocation: read the input, fetch, and write the output.
// Concurrent calls are neither cancelled nor serialized.
func (h *Handler) Ask(ctx context.Context) Result {
	return h.Apply(h.Fetch(ctx, h.Begin()))
}

// InFlight is the number of fetches that have not resolved yet.
func (h *Handler) InFlight() int {
	return int(h.inFlight.Load())
}
