package middleware

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	apperrors "confreg/pkg/errors"
	httputil "confreg/pkg/http"
)

// timeoutWriter wraps http.ResponseWriter to prevent writes after timeout
type timeoutWriter struct {
	http.ResponseWriter
	mu         sync.Mutex
	timedOut   bool
	written    bool
	statusCode int
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut || tw.written {
		return
	}

	tw.statusCode = code
	tw.written = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}

	if !tw.written {
		tw.statusCode = http.StatusOK
		tw.written = true
	}

	return tw.ResponseWriter.Write(b)
}

type commitKey struct{}

const (
	statePending int32 = iota
	stateCommitted
	stateTimedOut
)

// Commit marks the request as past the point of no return. A committed
// request is never answered with a timeout; RequestTimeout waits for the
// handler's own response instead, so handlers that commit must bound their
// remaining work themselves. It returns false when the timeout response has
// already been sent, in which case the handler must not start the work.
func Commit(ctx context.Context) bool {
	state, ok := ctx.Value(commitKey{}).(*atomic.Int32)
	if !ok {
		return true
	}
	return state.CompareAndSwap(statePending, stateCommitted)
}

func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := &atomic.Int32{}
			ctx, cancel := context.WithTimeout(context.WithValue(r.Context(), commitKey{}, state), timeout)
			defer cancel()

			r = r.WithContext(ctx)

			tw := &timeoutWriter{ResponseWriter: w}

			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case <-done:
				return
			case p := <-panicked:
				panic(p)
			case <-ctx.Done():
				if !state.CompareAndSwap(statePending, stateTimedOut) {
					select {
					case <-done:
						return
					case p := <-panicked:
						panic(p)
					}
				}

				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.timedOut = true
				if !tw.written {
					tw.written = true
					_ = httputil.WriteError(w, apperrors.Timeout("Request timeout"))
				}
			}
		})
	}
}
