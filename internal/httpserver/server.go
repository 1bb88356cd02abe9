// Package httpserver is the HTTP front door (spec §4.F): a single chi
// router served by two listeners bound to the same address, plaintext on
// port P and TLS on port P+1, joined so that either one dying brings both
// down. Start/Stop follows the shutdown-channel/context-select shape of
// the teacher's internal/webdav/server.go; the pair of listener
// goroutines is supervised with github.com/sourcegraph/conc's panic-safe
// WaitGroup the way internal/health/worker.go fans out health checks.
package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sourcegraph/conc"
)

// Server owns the plaintext and TLS *http.Server instances sharing one
// router, and their graceful shutdown.
type Server struct {
	plain *http.Server
	tls   *http.Server
}

// New builds a Server. bind is the listen address (empty for all
// interfaces); plainPort is P, tlsPort is P+1 (spec §4.F), tlsConfig is
// the certificate internal/tlsmaterial produced.
func New(bind string, plainPort, tlsPort int, handler http.Handler, tlsConfig *tls.Config) *Server {
	return &Server{
		plain: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", bind, plainPort),
			Handler:      handler,
			IdleTimeout:  5 * time.Minute,
			WriteTimeout: 30 * time.Minute,
		},
		tls: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", bind, tlsPort),
			Handler:      handler,
			TLSConfig:    tlsConfig,
			IdleTimeout:  5 * time.Minute,
			WriteTimeout: 30 * time.Minute,
		},
	}
}

// Run starts both listeners and blocks until ctx is cancelled or either
// listener fails, at which point both are shut down gracefully (spec §5:
// "the two listeners... run in parallel top-level tasks joined by
// first-to-fail").
func (s *Server) Run(ctx context.Context) error {
	errs := make(chan error, 2)
	wg := conc.NewWaitGroup()

	wg.Go(func() {
		slog.InfoContext(ctx, "plaintext listener starting", "addr", s.plain.Addr)
		if err := s.plain.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("plaintext listener: %w", err)
			return
		}
		errs <- nil
	})

	wg.Go(func() {
		slog.InfoContext(ctx, "TLS listener starting", "addr", s.tls.Addr)
		if err := s.tls.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("TLS listener: %w", err)
			return
		}
		errs <- nil
	})

	var runErr error
	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "http server received shutdown signal")
	case err := <-errs:
		if err != nil {
			runErr = err
			slog.ErrorContext(ctx, "listener failed, shutting down both", "error", err)
		}
	}

	s.shutdown()
	wg.Wait()

	if runErr != nil {
		return runErr
	}
	return nil
}

func (s *Server) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.plain.Shutdown(shutdownCtx); err != nil {
		slog.Error("error shutting down plaintext listener", "error", err)
	}
	if err := s.tls.Shutdown(shutdownCtx); err != nil {
		slog.Error("error shutting down TLS listener", "error", err)
	}
}
