package async

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/m-mizutani/drivemirror/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Runner executes handlers in background goroutines detached from the
// request that started them. Handlers share the runner's base context, which
// is cancelled by Shutdown.
type Runner struct {
	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a Runner whose base context keeps the logger of ctx but
// not its cancellation.
func NewRunner(ctx context.Context) *Runner {
	base, cancel := context.WithCancel(newBackgroundContext(ctx))
	return &Runner{base: base, cancel: cancel}
}

// Dispatch runs handler in a new goroutine. The handler context carries the
// logger of ctx and is cancelled only when the runner shuts down. Panics and
// returned errors are logged.
func (r *Runner) Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := logging.With(r.base, logging.From(ctx))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				logging.From(newCtx).Error("panic in async handler",
					"recover", rec,
					"stack", string(debug.Stack()))
			}
		}()

		if err := handler(newCtx); err != nil {
			logging.From(newCtx).Error("error in async handler", "error", err)
		}
	}()
}

// Shutdown cancels running handlers and waits for them to return, or for ctx
// to be done.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "async handlers did not finish before shutdown deadline")
	}
}

func newBackgroundContext(ctx context.Context) context.Context {
	return logging.With(context.Background(), logging.From(ctx))
}
