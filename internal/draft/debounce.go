package draft

import (
	"context"
	"sync"
	"time"
)

const defaultQuiet = time.Second

// AutoSaver batches field edits and persists them after a quiet period,
// so a burst of keystrokes turns into a single save.
type AutoSaver struct {
	ctrl  *Controller
	quiet time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	timer    *time.Timer
	dirty    bool
	closed   bool
	lastErr  error
	inflight sync.WaitGroup
}

// NewAutoSaver wraps a controller. quiet <= 0 falls back to one second.
func NewAutoSaver(ctrl *Controller, quiet time.Duration) *AutoSaver {
	if quiet <= 0 {
		quiet = defaultQuiet
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AutoSaver{ctrl: ctrl, quiet: quiet, ctx: ctx, cancel: cancel}
}

// Set applies one field edit to the draft and (re)arms the quiet timer.
// Each edit pushes the pending save further out.
func (a *AutoSaver) Set(path string, value any) error {
	if err := a.ctrl.MutateField(path, value); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.dirty = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.quiet, a.fire)
	return nil
}

// Flush persists pending edits immediately instead of waiting out the
// quiet period.
func (a *AutoSaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.closed || !a.dirty {
		a.mu.Unlock()
		return nil
	}
	a.dirty = false
	a.mu.Unlock()

	return a.save(ctx)
}

// Close cancels any pending save, aborts one already on the wire, and
// waits for it to unwind. No write reaches the server after Close
// returns, even if the timer has already expired.
func (a *AutoSaver) Close() {
	a.mu.Lock()
	a.closed = true
	a.dirty = false
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()

	a.cancel()
	a.inflight.Wait()
}

// Err returns the error from the most recent background save, if any.
func (a *AutoSaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *AutoSaver) fire() {
	a.mu.Lock()
	if a.closed || !a.dirty {
		a.mu.Unlock()
		return
	}
	a.dirty = false
	a.inflight.Add(1)
	a.mu.Unlock()
	defer a.inflight.Done()

	ctx, cancel := context.WithTimeout(a.ctx, 30*time.Second)
	defer cancel()
	_ = a.save(ctx)
}

func (a *AutoSaver) save(ctx context.Context) error {
	err := a.ctrl.Save(ctx, nil)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastErr = err
	if err != nil && !a.closed {
		// Keep the edits pending so a later Set or Flush retries them.
		a.dirty = true
	}
	return err
}
