// Package httpserver wires the gin router: CORS, the token authenticator,
// the GraphQL endpoint, image uploads, static images and metrics.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/pitstop/internal/logging"
	"github.com/dmitrijs2005/pitstop/internal/server/auth"
	"github.com/dmitrijs2005/pitstop/internal/server/graphql"
	"github.com/dmitrijs2005/pitstop/internal/server/images"
	"github.com/dmitrijs2005/pitstop/internal/server/metrics"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// ImageReleaser takes back an image path that a post no longer needs.
type ImageReleaser interface {
	ReleaseImage(ctx context.Context, path string)
}

// Options are the collaborators of the HTTP server. ImagesRoot is only set
// for the local image backend; it is then served under /images.
type Options struct {
	Authenticator *auth.Authenticator
	GraphQL       *graphql.Handler
	Store         images.Store
	Images        ImageReleaser
	Metrics       *metrics.Metrics
	ImagesRoot    string
}

type HTTPServer struct {
	address string
	logger  logging.Logger
	opts    Options
	engine  *gin.Engine
}

func NewHTTPServer(a string, l logging.Logger, opts Options) *HTTPServer {
	s := &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		opts:    opts,
	}
	s.engine = s.routes()
	return s
}

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()

	r.Use(s.recovery(), s.observe(), cors(), s.opts.Authenticator.Gin(), s.errorHandler())

	r.POST("/graphql", s.opts.GraphQL.Serve)
	r.GET("/graphql", s.opts.GraphQL.Serve)
	r.PUT("/add-image", s.addImage)

	if s.opts.ImagesRoot != "" {
		r.Static("/"+images.PathPrefix, s.opts.ImagesRoot)
	}
	if s.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.opts.Metrics.Handler()))
	}

	return r
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
