// Package loader accumulates a paginated collection page by page, keeping
// only the first occurrence of every identifier.
package loader

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Keyed is anything with a stable integer identifier.
type Keyed interface {
	EntityID() int
}

// State is the loader's position in its fetch cycle.
type State int

const (
	Idle State = iota
	Loading
	Exhausted
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Exhausted:
		return "exhausted"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Page is one fetched page in the uniform shape.
type Page[T any] struct {
	Items []T
	Total int
}

// PageFunc fetches the given 1-based page.
type PageFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// Result describes how one fetch was applied.
type Result struct {
	Page    int
	Added   int
	Dropped int
	Err     error
}

// Options tunes a Loader.
type Options[T any] struct {
	Trigger Trigger
	// Admit filters raw items before deduplication. Nil admits everything.
	Admit func(T) bool
	// FailureMessage is shown in place of the error text.
	FailureMessage string
	Logger         *slog.Logger
	// OnResult is called after every applied fetch, under no lock.
	OnResult func(Result)
}

// Snapshot is a consistent copy of the loader state.
type Snapshot[T any] struct {
	Items   []T
	Page    int // next page to request
	Total   int // as last reported by the server
	State   State
	Message string
	Err     error
	Closed  bool
}

// ErrClosed is returned by LoadAll on a torn down loader.
var ErrClosed = errors.New("loader closed")

// Loader owns the accumulated collection of one view instance. Page
// requests are serialized: a new fetch only starts once the previous result
// has been applied.
type Loader[T Keyed] struct {
	fetch PageFunc[T]
	opts  Options[T]

	mu      sync.Mutex
	state   State
	page    int
	items   []T
	seen    map[int]struct{}
	total   int
	err     error
	started bool
	closed  bool
}

// New creates an idle loader positioned at page 1.
func New[T Keyed](fetch PageFunc[T], opts Options[T]) *Loader[T] {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.FailureMessage == "" {
		opts.FailureMessage = "An error occurred while fetching data. Please try again later."
	}
	return &Loader[T]{
		fetch: fetch,
		opts:  opts,
		state: Idle,
		page:  1,
		seen:  make(map[int]struct{}),
	}
}

// Start loads the first page. It is a no-op once anything has been requested.
func (l *Loader[T]) Start(ctx context.Context) error {
	page, ok := l.begin(Idle, true)
	if !ok {
		return nil
	}
	_, err := l.run(ctx, page)
	return err
}

// Advance requests the next page. It reports false when nothing was applied:
// a request is in flight, the loader is exhausted, errored or closed, or it
// was closed while the response was on its way.
func (l *Loader[T]) Advance(ctx context.Context) (bool, error) {
	page, ok := l.begin(Idle, false)
	if !ok {
		return false, nil
	}
	return l.run(ctx, page)
}

// Retry re-requests the page that failed.
func (l *Loader[T]) Retry(ctx context.Context) (bool, error) {
	page, ok := l.begin(Errored, false)
	if !ok {
		return false, nil
	}
	return l.run(ctx, page)
}

// Signal handles an advance request from the view. Signals of a trigger the
// loader is not wired to, signals while a text filter is active and scroll
// events away from the bottom are ignored.
func (l *Loader[T]) Signal(ctx context.Context, s Signal) (bool, error) {
	if l.opts.Trigger == TriggerNone || s.Kind != l.opts.Trigger {
		return false, nil
	}
	if s.Query != "" {
		return false, nil
	}
	if s.Kind == TriggerScroll && !s.Position.NearBottom() {
		return false, nil
	}
	return l.Advance(ctx)
}

// LoadAll keeps advancing until the collection is exhausted or the
// accumulated length reaches the server total. An errored loader first
// retries the page that failed.
func (l *Loader[T]) LoadAll(ctx context.Context) error {
	if l.State() == Errored {
		if _, err := l.Retry(ctx); err != nil {
			return err
		}
	} else if err := l.Start(ctx); err != nil {
		return err
	}
	for {
		l.mu.Lock()
		state, n, total, closed, err := l.state, len(l.items), l.total, l.closed, l.err
		l.mu.Unlock()

		switch {
		case closed:
			return ErrClosed
		case state == Errored:
			return err
		case state != Idle || n >= total:
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		advanced, err := l.Advance(ctx)
		if err != nil {
			return err
		}
		if !advanced {
			return nil
		}
	}
}

// Close tears the loader down. Responses that arrive afterwards are dropped
// and every later call is a no-op.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

// Snapshot returns a copy of the current state.
func (l *Loader[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap := Snapshot[T]{
		Items:  append([]T(nil), l.items...),
		Page:   l.page,
		Total:  l.total,
		State:  l.state,
		Err:    l.err,
		Closed: l.closed,
	}
	if l.state == Errored {
		snap.Message = l.opts.FailureMessage
	}
	return snap
}

// State returns the current state.
func (l *Loader[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Trigger returns the trigger this loader is wired to.
func (l *Loader[T]) Trigger() Trigger {
	return l.opts.Trigger
}

func (l *Loader[T]) begin(from State, fresh bool) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.state != from {
		return 0, false
	}
	if fresh && l.started {
		return 0, false
	}
	l.started = true
	l.state = Loading
	l.err = nil
	return l.page, true
}

// run fetches page and reports whether the response was applied.
func (l *Loader[T]) run(ctx context.Context, page int) (bool, error) {
	res, err := l.fetch(ctx, page)
	result, applied := l.apply(page, res, err)
	if !applied {
		l.opts.Logger.Debug("dropping response for closed view", slog.Int("page", page))
		return false, nil
	}
	if l.opts.OnResult != nil {
		l.opts.OnResult(result)
	}
	return true, err
}

func (l *Loader[T]) apply(page int, res Page[T], err error) (Result, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return Result{}, false
	}

	result := Result{Page: page, Err: err}
	if err != nil {
		l.state = Errored
		l.err = err
		l.opts.Logger.Warn("page fetch failed",
			slog.Int("page", page),
			slog.String("error", err.Error()))
		return result, true
	}

	l.total = res.Total
	added := 0
	for _, item := range res.Items {
		if l.opts.Admit != nil && !l.opts.Admit(item) {
			result.Dropped++
			continue
		}
		id := item.EntityID()
		if _, dup := l.seen[id]; dup {
			result.Dropped++
			continue
		}
		l.seen[id] = struct{}{}
		l.items = append(l.items, item)
		added++
	}
	result.Added = added

	if added == 0 {
		l.state = Exhausted
		l.opts.Logger.Debug("collection exhausted", slog.Int("page", page), slog.Int("loaded", len(l.items)))
		return result, true
	}
	l.page++
	l.state = Idle
	return result, true
}
