// Package server is the optional local control api: the same operations as the
// console, over HTTP, for a browser or a script.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/docqa-client/internal/adapter/utils"
	"github.com/akolanti/docqa-client/internal/config"
	"github.com/akolanti/docqa-client/internal/handlers"
	"github.com/akolanti/docqa-client/internal/middleware"
	"github.com/akolanti/docqa-client/pkg/logger_i"
)

type Server struct {
	server *http.Server
	logger *logger_i.Logger
}

func CreateServer(listenAddr string, handler *handlers.ControlHandler) *Server {
	r := utils.NewRouter()

	r.Router.Get("/state", middleware.Wrap(handler.GetState))
	r.Router.Post("/upload/", middleware.Wrap(handler.PostUpload))
	r.Router.Post("/query/", middleware.Wrap(handler.PostQuery))
	r.Router.Put("/input", middleware.Wrap(handler.PutInput))
	r.Router.Post("/submit", middleware.Wrap(handler.PostSubmit))
	r.Router.Post("/clear", middleware.Wrap(handler.PostClear))

	return &Server{
		server: &http.Server{
			Addr:         listenAddr,
			Handler:      r.Router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger_i.NewLogger("Server").With("address", listenAddr),
	}
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// ListenAndServe blocks until the server fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("control api is listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("control api crashed", "error", err)
		return err
	}
	return nil
}

// Shutdown waits for in flight requests up to the shutdown timeout, then closes
// whatever is left.
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	s.server.SetKeepAlivesEnabled(false)
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("could not shut down gracefully, forcing", "error", err)
		_ = s.server.Close()
		return
	}
	s.logger.Info("control api stopped")
}
