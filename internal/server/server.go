// internal/server/server.go
//
// HTTP server lifecycle.
//
// Production hardening recommends:
//
//   • ReadTimeout   – abort slow-loris headers (10 s)
//   • WriteTimeout  – cap total response time (15 s)
//   • IdleTimeout   – close keep-alives on idle clients (60 s)
//
// The values come from config.HTTP, with those defaults.  Run serves until
// ctx is cancelled, then shuts down in two phases: first the listener
// stops and in-flight requests finish, then deferred work scheduled past
// the response (cache fills, confirmation mail) is drained.  Both phases
// share one shutdown budget.
//

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/config"
)

// Drainer waits for background work.  *background.Runner satisfies it.
type Drainer interface {
	Drain(ctx context.Context) error
}

// New constructs an *http.Server from cfg.
func New(cfg config.HTTP, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Run serves on srv until ctx is done, then shuts down within grace.
func Run(ctx context.Context, srv *http.Server, drain Drainer, grace time.Duration) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	return Serve(ctx, srv, ln, drain, grace)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, drain Drainer, grace time.Duration) error {
	errc := make(chan error, 1)
	go func() {
		zap.L().Info("listening", zap.String("addr", ln.Addr().String()))
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	zap.L().Info("shutting down", zap.Duration("grace", grace))
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()

	err := srv.Shutdown(sctx)
	if drain != nil {
		if derr := drain.Drain(sctx); derr != nil {
			zap.L().Warn("background drain incomplete", zap.Error(derr))
			err = errors.Join(err, derr)
		}
	}
	if serr := <-errc; serr != nil && !errors.Is(serr, http.ErrServerClosed) {
		err = errors.Join(err, serr)
	}
	return err
}
