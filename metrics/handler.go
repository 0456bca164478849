package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricsPath = "/metrics"
	pprofPath   = "/debug/pprof/"
)

// Server runs the metrics HTTP server.
type Server struct {
	cfg        *Config
	httpServer *http.Server
}

// NewServer initializes a new metrics server.
func NewServer(cfg *Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg}
	s.httpServer = &http.Server{
		Addr:              cfg.address,
		Handler:           s.Handler(),
		ReadTimeout:       cfg.readTimeout,
		WriteTimeout:      cfg.writeTimeout,
		ReadHeaderTimeout: cfg.readHeaderTimeout,
	}
	return s, nil
}

// Handler returns the router serving GET /metrics from Gatherer, plus the
// runtime profiles under /debug/pprof/ when profiling is enabled.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.Handler(http.MethodGet, metricsPath, promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{}))

	if s.cfg.profiling {
		router.HandlerFunc(http.MethodGet, pprofPath, pprof.Index)
		router.HandlerFunc(http.MethodGet, pprofPath+"cmdline", pprof.Cmdline)
		router.HandlerFunc(http.MethodGet, pprofPath+"profile", pprof.Profile)
		router.HandlerFunc(http.MethodGet, pprofPath+"symbol", pprof.Symbol)
		router.HandlerFunc(http.MethodPost, pprofPath+"symbol", pprof.Symbol)
		router.HandlerFunc(http.MethodGet, pprofPath+"trace", pprof.Trace)
		for _, name := range []string{"goroutine", "heap", "threadcreate", "block", "mutex", "allocs"} {
			router.Handler(http.MethodGet, pprofPath+name, pprof.Handler(name))
		}
	}
	return router
}

// Run serves until Close is called or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.httpServer.Close()
	}()
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close shuts down the server.
func (s *Server) Close() error {
	return s.httpServer.Close()
}
