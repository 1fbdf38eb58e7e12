// Package http provides the gin HTTP server.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/sentinel-embed/pkg/infra/middleware"
	mwopts "github.com/kart-io/sentinel-embed/pkg/options/middleware"
	options "github.com/kart-io/sentinel-embed/pkg/options/server/http"
	apierrors "github.com/kart-io/sentinel-embed/pkg/utils/errors"
	"github.com/kart-io/sentinel-embed/pkg/utils/response"
	"github.com/kart-io/sentinel-embed/pkg/validator"
)

// Server is the gin HTTP server.
type Server struct {
	opts   *options.Options
	engine *gin.Engine
	server *http.Server
	addr   net.Addr
	errCh  chan error
}

// NewServer creates the engine and installs the global middleware chain:
// recovery, CORS, request ID, access log, body limit and timeout. Auth is
// installed per route group by the caller. Request bodies bound through gin
// are validated by the process-wide validator.
func NewServer(opts *options.Options, mw *mwopts.Options) *Server {
	if opts == nil {
		opts = options.NewOptions()
	}
	if mw == nil {
		mw = mwopts.NewOptions()
	}
	_ = mw.Complete()

	gin.SetMode(opts.Mode)
	validator.InstallGin()

	engine := gin.New()
	engine.Use(
		middleware.Recovery(mw.Recovery),
		middleware.CORS(mw.CORS),
		middleware.RequestID(mw.RequestID),
		middleware.Logger(mw.Logger),
		middleware.BodyLimit(opts.MaxBodyBytes),
		middleware.Timeout(mw.Timeout),
	)
	engine.NoRoute(func(c *gin.Context) {
		response.Fail(c, apierrors.ErrRouteNotFound)
	})

	return &Server{opts: opts, engine: engine, errCh: make(chan error, 1)}
}

// Name returns the server name.
func (s *Server) Name() string {
	return "http"
}

// Engine returns the gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr returns the bound address once started.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Err delivers a serve error raised after Start returned.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Start binds the listen address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	s.addr = ln.Addr()
	s.server = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	go func() {
		defer close(s.errCh)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- err
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
