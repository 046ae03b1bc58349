// Package scheduler runs an editor session's callbacks on one goroutine.
//
// Input callbacks are posted from any goroutine and executed strictly in
// order; a per-frame callback advances time-based work such as layout
// simulation. Callbacks that change visible state call MarkDirty, and the
// loop renders once after the batch of callbacks that dirtied it.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned when posting to a loop that has exited.
var ErrStopped = errors.New("scheduler: loop stopped")

// DefaultFrameInterval is 60 frames per second.
const DefaultFrameInterval = time.Second / 60

// Task is a unit of work executed on the loop goroutine.
type Task func()

// ErrorHandler handles a panic raised by a task, frame or render callback.
// Returns true to keep the loop running, false to stop it.
type ErrorHandler func(err interface{}) bool

// Option configures a Loop.
type Option func(*Loop)

// WithFrameInterval sets the period of the frame callback.
func WithFrameInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.frameInterval = d
		}
	}
}

// WithFrame sets the callback run once per frame.
func WithFrame(fn func()) Option {
	return func(l *Loop) { l.onFrame = fn }
}

// WithRender sets the callback run after any batch that called MarkDirty.
func WithRender(fn func()) Option {
	return func(l *Loop) { l.onRender = fn }
}

// WithErrorHandler sets the panic handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(l *Loop) { l.onError = h }
}

// WithLogger sets the logger used by the default error handler.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.log = logger.Named("scheduler")
		}
	}
}

// WithQueueSize sets the capacity of the task queue.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queue = make(chan Task, n)
		}
	}
}

// Loop is a single-goroutine cooperative scheduler.
type Loop struct {
	queue         chan Task
	frameInterval time.Duration
	onFrame       func()
	onRender      func()
	onError       ErrorHandler
	log           *zap.Logger

	dirty   atomic.Bool
	running atomic.Bool
	done    chan struct{}
	frames  atomic.Uint64
}

// NewLoop creates a loop. Call Run to start it.
func NewLoop(opts ...Option) *Loop {
	l := &Loop{
		queue:         make(chan Task, 1024),
		frameInterval: DefaultFrameInterval,
		log:           zap.NewNop(),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.onError == nil {
		l.onError = func(err interface{}) bool {
			l.log.Error("callback panicked", zap.Any("panic", err))
			return true
		}
	}
	return l
}

// Post queues t for execution. It blocks while the queue is full and fails
// once the loop has stopped.
func (l *Loop) Post(t Task) error {
	if t == nil {
		return nil
	}
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.queue <- t:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MarkDirty requests a render after the current batch.
func (l *Loop) MarkDirty() {
	l.dirty.Store(true)
}

// IsRunning returns whether Run is executing.
func (l *Loop) IsRunning() bool {
	return l.running.Load()
}

// Frames returns the number of frame callbacks run so far.
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run executes tasks and frames until ctx is cancelled or the error handler
// asks to stop. A loop can only be run once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("scheduler: loop already running")
	}
	defer func() {
		l.running.Store(false)
		close(l.done)
	}()

	ticker := time.NewTicker(l.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case t := <-l.queue:
			batch := []Task{t}
		drain:
			for {
				select {
				case next := <-l.queue:
					batch = append(batch, next)
				default:
					break drain
				}
			}
			for _, task := range batch {
				if !l.safely(task) {
					return errors.New("scheduler: stopped by error handler")
				}
			}

		case <-ticker.C:
			if l.onFrame != nil {
				l.frames.Add(1)
				if !l.safely(l.onFrame) {
					return errors.New("scheduler: stopped by error handler")
				}
			}
		}

		if l.dirty.CompareAndSwap(true, false) && l.onRender != nil {
			if !l.safely(l.onRender) {
				return errors.New("scheduler: stopped by error handler")
			}
		}
	}
}

// safely runs fn, converting a panic into an ErrorHandler call.
func (l *Loop) safely(fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = l.onError(fmt.Sprintf("%v\n%s", r, debug.Stack()))
		}
	}()
	fn()
	return true
}
