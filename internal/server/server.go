package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/logicview/internal/metrics"
	"github.com/matzehuels/logicview/pkg/buildinfo"
	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/geom"
	"github.com/matzehuels/logicview/pkg/netlist"
	"github.com/matzehuels/logicview/pkg/render/nodelink"
	"github.com/matzehuels/logicview/pkg/view"
)

// Server serves one scene.
type Server struct {
	mu      sync.Mutex
	scene   *view.Scene
	logger  *log.Logger
	metrics *metrics.Collector
	gather  prometheus.Gatherer
	router  chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger logs each request at debug level.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records request metrics on c and serves g on /metrics.
func WithMetrics(c *metrics.Collector, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = c
		s.gather = g
	}
}

// New returns a server for scene.
func New(scene *view.Scene, opts ...Option) *Server {
	s := &Server{scene: scene, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler { return s.router }

// Do runs fn with exclusive access to the scene.
func (s *Server) Do(fn func(*view.Scene)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.scene)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down,
// giving in-flight requests up to grace to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string, grace time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, grace)
}

// Serve is [Server.ListenAndServe] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, grace time.Duration) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/version", s.handleVersion)
	if s.gather != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	}

	r.Route("/scope", func(r chi.Router) {
		r.Get("/", s.handleScope)
		r.Post("/enter/{id}", s.handleEnter)
		r.Post("/exit", s.handleExit)
		r.Post("/root", s.handleRoot)

		r.Get("/elements/{id}", s.handleElement)
		r.Delete("/elements/{id}", s.handleRemove)
		r.Get("/elements/{id}/hit", s.handleHitGate)

		r.Get("/hit", s.handleHit)
		r.Get("/rect", s.handleRect)
		r.Get("/gates", s.handleGates)

		r.Get("/nets", s.handleNets)
		r.Get("/order", s.handleOrder)
		r.Get("/dot", s.handleDOT)
	})
	return r
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		if s.metrics != nil {
			s.metrics.ObserveRequest(r.Method, route, status, d)
		}
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"elapsed", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleScope(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.scopeView())
}

func (s *Server) scopeView() scopeJSON {
	cur := s.scene.Scope()
	v := scopeJSON{
		ID:          cur.ID(),
		Name:        cur.Name,
		Depth:       s.scene.Depth(),
		Elements:    []elementJSON{},
		Connections: []connectionJSON{},
	}
	for _, el := range s.scene.Path() {
		v.Path = append(v.Path, el.Name)
	}
	for _, el := range s.scene.Children() {
		v.Elements = append(v.Elements, toElement(el))
	}
	for _, c := range s.scene.ConnectionsInScope() {
		v.Connections = append(v.Connections, toConnection(c))
	}
	return v
}

func (s *Server) handleEnter(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.scene.Enter(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.scopeView())
}

func (s *Server) handleExit(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene.Exit()
	writeJSON(w, http.StatusOK, s.scopeView())
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene.ResetToGlobal()
	writeJSON(w, http.StatusOK, s.scopeView())
}

func (s *Server) handleElement(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.scene.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toElement(el))
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.scene.Remove(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHitGate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	x, y, err := pointParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.scene.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	g := s.scene.HitGate(el, x, y)
	if g == nil {
		writeError(w, errs.New(errs.ErrCodeNotFound, "no gate of element %d at %d,%d", id, x, y))
		return
	}
	writeJSON(w, http.StatusOK, toGate(g))
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	x, y, err := pointParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, toElements(s.scene.FindByPoint(x, y)))
}

func (s *Server) handleRect(w http.ResponseWriter, r *http.Request) {
	vals, err := intParams(r, "x", "y", "w", "h")
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rect := geom.Rect{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}
	writeJSON(w, http.StatusOK, toElements(s.scene.FindByRect(rect)))
}

func (s *Server) handleGates(w http.ResponseWriter, r *http.Request) {
	x, y, err := pointParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, toGates(s.scene.FindGatesAt(x, y)))
}

func (s *Server) handleNets(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nets := netlist.Nets(s.scene)
	out := make([]netJSON, len(nets))
	for i, n := range nets {
		out[i] = toNet(n)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOrder(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, err := netlist.Order(s.scene)
	if err != nil {
		writeError(w, err)
		return
	}
	ids := make([]uint64, len(order))
	for i, el := range order {
		ids[i] = el.ID()
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	opts := nodelink.Options{
		Detailed:  r.URL.Query().Get("detailed") != "",
		Positions: r.URL.Query().Get("positions") != "",
	}
	s.mu.Lock()
	dot := nodelink.ToDOT(s.scene, opts)
	s.mu.Unlock()
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = io.WriteString(w, dot)
}

func toElements(els []*view.Element) []elementJSON {
	out := make([]elementJSON, len(els))
	for i, el := range els {
		out[i] = toElement(el)
	}
	return out
}

func idParam(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "bad element id %q", raw)
	}
	return id, nil
}

func pointParams(r *http.Request) (x, y int, err error) {
	vals, err := intParams(r, "x", "y")
	if err != nil {
		return 0, 0, err
	}
	return vals[0], vals[1], nil
}

func intParams(r *http.Request, names ...string) ([]int, error) {
	q := r.URL.Query()
	vals := make([]int, len(names))
	for i, name := range names {
		raw := q.Get(name)
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errs.New(errs.ErrCodeInvalidInput, "query parameter %s must be an integer, got %q", name, raw)
		}
		vals[i] = v
	}
	return vals, nil
}
