// Package interactor provides the two asynchronous use-case shapes the
// presenters are built on: a restart-on-latest stream derivation and a
// one-shot hand-off invocation. Both run their work on background goroutines
// scoped to the interactor and cancelled on Close.
package interactor

import (
	"context"
	"sync"

	"github.com/anselmoalexandre/tivi/internal/observe"
)

// Result carries either a derived value or the error that ended a derivation.
type Result[T any] struct {
	Value T
	Err   error
}

// DeriveFunc produces the output stream for one parameter value. It should
// call emit for every derived value and return when ctx is cancelled or the
// derivation is complete. A non-nil return error is delivered to observers.
type DeriveFunc[P, T any] func(ctx context.Context, params P, emit func(T)) error

// SubjectInteractor re-derives its output whenever a new parameter arrives.
// Invoke republishes the latest parameter: the in-flight derivation is
// cancelled and a fresh one is started, so only the most recent parameter's
// values ever reach observers. All observers share the one hot derivation
// through the state cell.
type SubjectInteractor[P, T any] struct {
	derive DeriveFunc[P, T]
	state  *observe.Value[Result[T]]

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	current context.CancelFunc
	wg      sync.WaitGroup
	closed  bool
}

// NewSubjectInteractor creates an interactor whose derivations run under ctx.
func NewSubjectInteractor[P, T any](ctx context.Context, derive DeriveFunc[P, T]) *SubjectInteractor[P, T] {
	scope, cancel := context.WithCancel(ctx)
	return &SubjectInteractor[P, T]{
		derive: derive,
		state:  observe.NewValue[Result[T]](),
		ctx:    scope,
		cancel: cancel,
	}
}

// Invoke replaces the current parameter. Any running derivation is cancelled
// before the new one starts; values it had not yet emitted are discarded.
func (s *SubjectInteractor[P, T]) Invoke(params P) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.current != nil {
		s.current()
	}
	// Wait for the previous derivation to fully stop so a cancelled run can
	// never emit after its successor started.
	s.wg.Wait()

	runCtx, cancel := context.WithCancel(s.ctx)
	s.current = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.derive(runCtx, params, func(value T) {
			if runCtx.Err() != nil {
				return
			}
			s.state.Set(Result[T]{Value: value})
		})
		if err != nil && runCtx.Err() == nil {
			s.state.Set(Result[T]{Err: err})
		}
	}()
}

// State exposes the shared derivation output.
func (s *SubjectInteractor[P, T]) State() *observe.Value[Result[T]] {
	return s.state
}

// Close cancels any in-flight derivation and terminates all observers.
func (s *SubjectInteractor[P, T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.state.Close()
}

// ExecuteFunc computes the single result of one ChannelInteractor invocation.
type ExecuteFunc[P, T any] func(ctx context.Context, params P) (T, error)

// ChannelInteractor executes once per invocation and offers the result into a
// 1-buffered hand-off channel read by a single observer. If the observer has
// not consumed the previous result, the new one is dropped; delivery is
// best-effort by contract.
type ChannelInteractor[P, T any] struct {
	execute ExecuteFunc[P, T]

	mu      sync.Mutex
	ch      chan Result[T]
	ctx     context.Context
	cancel  context.CancelFunc
	cleared bool
}

// NewChannelInteractor creates an interactor whose invocations run under ctx.
func NewChannelInteractor[P, T any](ctx context.Context, execute ExecuteFunc[P, T]) *ChannelInteractor[P, T] {
	scope, cancel := context.WithCancel(ctx)
	return &ChannelInteractor[P, T]{
		execute: execute,
		ch:      make(chan Result[T], 1),
		ctx:     scope,
		cancel:  cancel,
	}
}

// Invoke computes one result asynchronously and offers it to the observer.
func (c *ChannelInteractor[P, T]) Invoke(params P) {
	c.mu.Lock()
	if c.cleared {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	go func() {
		value, err := c.execute(c.ctx, params)
		if c.ctx.Err() != nil {
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.cleared {
			return
		}
		select {
		case c.ch <- Result[T]{Value: value, Err: err}:
		default:
			// Hand-off full: the un-consumed prior result wins.
		}
	}()
}

// Observe returns the hand-off channel. It is closed by Clear.
func (c *ChannelInteractor[P, T]) Observe() <-chan Result[T] {
	return c.ch
}

// Clear terminates the stream: pending work is cancelled and the hand-off
// channel is closed.
func (c *ChannelInteractor[P, T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cleared {
		return
	}
	c.cleared = true
	c.cancel()
	close(c.ch)
}
