package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hkb-commerce/storefront-backend/pkg/config"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
)

// Server wraps http.Server with graceful shutdown.
type Server struct {
	httpServer *http.Server
	cfg        config.HTTPConfig
	log        *logger.Logger
}

// NewServer builds the server around the assembled router.
func NewServer(cfg config.HTTPConfig, handler http.Handler, log *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		cfg: cfg,
		log: log,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "serve http")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.log.Info("http server draining")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "shutdown http server")
	}
	return nil
}
