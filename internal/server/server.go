// Package server serves the rendered county map and its hover and legend APIs
// over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/edumap/internal/interact"
	"github.com/sells-group/edumap/internal/join"
	"github.com/sells-group/edumap/internal/metrics"
	"github.com/sells-group/edumap/internal/render"
)

// Cache keys of the encoded documents.
const (
	keyPage    = "page"
	keySVG     = "svg"
	keyGeoJSON = "geojson"
)

// Map is a loaded, rendered map. It is never mutated after construction.
type Map struct {
	Scene *render.Scene
	Index *join.Index
}

// Options configures a Server.
type Options struct {
	// Cache is optional.
	Cache *DocumentCache
	// Metrics is optional.
	Metrics *metrics.Metrics
	Page    render.PageOptions
	// Empty is drawn when no map is loaded.
	Empty *render.Scene
}

// Server routes map requests. A nil map puts the server in its failure mode:
// pages show an empty drawing area and the APIs answer 503.
type Server struct {
	m        *Map
	opts     Options
	entries map[int]interact.Entry
	router  chi.Router
}

// New builds the server and its routes.
func New(m *Map, opts Options) *Server {
	if opts.Empty == nil {
		opts.Empty = render.Empty(render.DefaultOptions())
	}
	s := &Server{m: m, opts: opts}
	if m != nil {
		s.entries = interact.New(m.Index, opts.Page.Tooltip).Entries()
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.observe)

	r.Get("/", s.handlePage)
	r.Get("/map.svg", s.handleSVG)
	r.Get("/map.geojson", s.handleGeoJSON)
	r.Get("/health", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireMap)
		r.Get("/counties/{fips}", s.handleCounty)
		r.Get("/hover", s.handleHover)
		r.Get("/legend", s.handleLegend)
		r.Get("/cache", s.handleCacheStats)
		r.Delete("/cache", s.handleCacheInvalidate)
	})
	return r
}

// observe logs each request and counts it by route pattern and status.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.opts.Metrics != nil {
			s.opts.Metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		}
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) requireMap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.m == nil {
			writeError(w, http.StatusServiceUnavailable, "datasets unavailable")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) scene() *render.Scene {
	if s.m == nil {
		return s.opts.Empty
	}
	return s.m.Scene
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	s.serveDocument(w, keyPage, "text/html; charset=utf-8", func(out io.Writer) error {
		return render.WritePage(out, s.scene(), s.entries, s.opts.Page)
	})
}

func (s *Server) handleSVG(w http.ResponseWriter, _ *http.Request) {
	s.serveDocument(w, keySVG, "image/svg+xml", func(out io.Writer) error {
		return render.WriteSVG(out, s.scene())
	})
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, _ *http.Request) {
	s.serveDocument(w, keyGeoJSON, "application/geo+json", func(out io.Writer) error {
		return render.WriteGeoJSON(out, s.scene())
	})
}

// serveDocument writes a cached document, encoding and caching it on a miss.
func (s *Server) serveDocument(w http.ResponseWriter, key, contentType string, encode func(io.Writer) error) {
	if s.opts.Cache != nil {
		if doc, ok := s.opts.Cache.Get(key); ok {
			w.Header().Set("Content-Type", doc.ContentType)
			w.Header().Set("X-Cache", "hit")
			_, _ = w.Write(doc.Body)
			return
		}
	}

	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		zap.L().Error("server: encode document failed", zap.String("document", key), zap.Error(err))
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	doc := Document{ContentType: contentType, Body: buf.Bytes()}
	if s.opts.Cache != nil {
		s.opts.Cache.Put(key, doc)
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("X-Cache", "miss")
	_, _ = w.Write(doc.Body)
}

type countyResponse struct {
	FIPS      int     `json:"fips"`
	Matched   bool    `json:"matched"`
	Education float64 `json:"education"`
	Fill      string  `json:"fill"`
	AreaName  string  `json:"area_name,omitempty"`
	State     string  `json:"state,omitempty"`
	Tooltip   string  `json:"tooltip,omitempty"`
}

func (s *Server) handleCounty(w http.ResponseWriter, r *http.Request) {
	fips, err := strconv.Atoi(chi.URLParam(r, "fips"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fips")
		return
	}
	c, ok := s.m.Scene.County(fips)
	if !ok {
		writeError(w, http.StatusNotFound, "county not found")
		return
	}
	resp := countyResponse{
		FIPS:      c.FIPS,
		Matched:   c.Matched,
		Education: c.Education,
		Fill:      c.Fill,
	}
	if c.Matched {
		resp.AreaName = c.Record.AreaName
		resp.State = c.Record.State
		resp.Tooltip = c.Record.Summary()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHover replays a pointer-enter on a fresh interaction layer. x and y
// default to 0.
func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fips, err := strconv.Atoi(q.Get("fips"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fips")
		return
	}
	x, errX := parseCoord(q.Get("x"))
	y, errY := parseCoord(q.Get("y"))
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "invalid pointer position")
		return
	}

	layer := interact.New(s.m.Index, s.opts.Page.Tooltip)
	tip := layer.PointerEnter(fips, interact.Point{X: x, Y: y})
	if s.opts.Metrics != nil {
		s.opts.Metrics.RecordHover(tip.Visible)
	}
	writeJSON(w, http.StatusOK, tip)
}

func (s *Server) handleLegend(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.m.Scene.Legend)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	if s.opts.Cache == nil {
		writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Cache.Stats())
}

// handleCacheInvalidate drops every cached document so the next request
// re-encodes it.
func (s *Server) handleCacheInvalidate(w http.ResponseWriter, _ *http.Request) {
	if s.opts.Cache != nil {
		s.opts.Cache.Invalidate()
		zap.L().Info("server: document cache invalidated")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if s.m == nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status, "loaded": s.m != nil})
}

func parseCoord(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
