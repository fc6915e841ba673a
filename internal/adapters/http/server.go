package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/njchilds90/golimit"
	"github.com/njchilds90/golimit/internal/metrics"
	"github.com/njchilds90/golimit/internal/normalize"
	"github.com/njchilds90/golimit/internal/resolver"
)

//go:embed openapi.yaml
var openapiSpec []byte

const maxBodyBytes = 1 << 20 // 1 MiB

// Server serves the resolver and the symbolic tool dispatcher over JSON.
type Server struct {
	resolver *resolver.Service
	metrics  *metrics.Metrics
	logger   *slog.Logger
	router   routers.Router
}

// LimitRequest is the body of POST /v1/limit.
type LimitRequest struct {
	Function string `json:"function"`
	Point    string `json:"point"`
	Side     string `json:"side,omitempty"`
}

// LimitResponse mirrors resolver.Result; failures are 200 with OK false.
type LimitResponse struct {
	OK       bool   `json:"ok"`
	Function string `json:"function"`
	Point    string `json:"point"`
	Side     string `json:"side"`
	Display  string `json:"display,omitempty"`
	Result   string `json:"result,omitempty"`
	LaTeX    string `json:"latex,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Title    string `json:"title,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Message  string `json:"message,omitempty"`
}

// NewHandler builds the router. m may be nil, which disables /metrics.
func NewHandler(svc *resolver.Service, m *metrics.Metrics, logger *slog.Logger) (http.Handler, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build openapi router: %w", err)
	}

	s := &Server{resolver: svc, metrics: m, logger: logger, router: router}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.recoverer)
	r.Use(s.logRequests)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(openapiSpec)
	})
	r.Get("/health", s.health)
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.validate)
		r.Post("/limit", s.limit)
		r.Post("/normalize", s.normalize)
		r.Post("/tool", s.tool)
		r.Get("/schema", s.schema)
	})
	return r, nil
}

// ============================================================
// Middleware
// ============================================================

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in handler", "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// validate checks requests against the embedded OpenAPI document.
func (s *Server) validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		route, params, err := s.router.FindRoute(r)
		if err != nil {
			status := http.StatusNotFound
			if errors.Is(err, routers.ErrMethodNotAllowed) {
				status = http.StatusMethodNotAllowed
			}
			writeError(w, status, err.Error())
			return
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route:      route,
			Options:    &openapi3filter.Options{AuthenticationFunc: openapi3filter.NoopAuthenticationFunc},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) limit(w http.ResponseWriter, r *http.Request) {
	var body LimitRequest
	if !decodeStrict(w, r, &body) {
		return
	}
	side, err := resolver.ParseSide(body.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in := resolver.RawInput{FunctionText: body.Function, PointText: body.Point, Side: side}
	res := s.resolver.Resolve(r.Context(), in)

	resp := LimitResponse{
		OK:       res.Success,
		Function: normalize.Expression(body.Function),
		Point:    normalize.Expression(body.Point),
		Side:     side.Name(),
	}
	if res.Success {
		resp.Display = res.Display
		resp.Result = golimit.String(res.Value)
		resp.LaTeX = golimit.LaTeX(res.Value)
	} else {
		resp.Kind = res.Kind.String()
		resp.Title = res.TitleHint()
		resp.Detail = res.Detail
		resp.Message = res.Message()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) normalize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !decodeStrict(w, r, &body) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"normalized": normalize.Expression(body.Text)})
}

func (s *Server) tool(w http.ResponseWriter, r *http.Request) {
	var req golimit.ToolRequest
	if !decodeStrict(w, r, &req) {
		return
	}
	resp := golimit.HandleToolCall(req)
	s.metrics.ObserveToolCall(req.Tool, resp.Error != "")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) schema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, golimit.MCPToolSpec())
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": golimit.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// ============================================================
// Helpers
// ============================================================

// decodeStrict decodes exactly one JSON value with no unknown fields.
func decodeStrict(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, "invalid JSON: trailing data")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Serve runs handler on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		logger.Info("http server stopped")
		return nil
	}
}
