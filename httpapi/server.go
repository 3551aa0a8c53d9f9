// Package httpapi serves the tool registry as plain REST handlers that mirror
// the upstream F1 API routes under /api.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/petal-labs/f1mcp/catalog"
	"github.com/petal-labs/f1mcp/health"
	"github.com/petal-labs/f1mcp/tool"
)

// HealthReporter exposes the latest upstream probe. *health.Scheduler satisfies it.
type HealthReporter interface {
	Report() health.Report
}

// Config configures a Server.
type Config struct {
	Registry *tool.Registry
	Health   HealthReporter
	Logger   *slog.Logger
}

// Server translates HTTP requests into registry invocations.
type Server struct {
	registry *tool.Registry
	health   HealthReporter
	logger   *slog.Logger
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

type healthResponse struct {
	Status   string         `json:"status"`
	Tools    int            `json:"tools"`
	Upstream *health.Report `json:"upstream,omitempty"`
}

type toolSummary struct {
	Name        string                    `json:"name"`
	Title       string                    `json:"title,omitempty"`
	Description string                    `json:"description"`
	Params      map[string]tool.ParamSpec `json:"params,omitempty"`
	Route       string                    `json:"route,omitempty"`
}

// NewServer creates a Server over cfg.Registry.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, errors.New("httpapi: registry is nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{
		registry: cfg.Registry,
		health:   cfg.Health,
		logger:   cfg.Logger,
	}, nil
}

// Handler returns the route mux. Only catalog tools present in the registry
// get an /api route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	for _, e := range catalog.Endpoints() {
		if _, ok := s.registry.Lookup(e.Tool); !ok {
			continue
		}
		mux.HandleFunc("GET "+routeFor(e), s.handleEndpoint(e))
	}

	mux.HandleFunc("GET /api/tools", s.handleListTools)
	mux.HandleFunc("POST /api/tools/{name}", s.handleInvokeTool)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func routeFor(e catalog.Endpoint) string {
	return "/api" + e.Path
}

func (s *Server) handleEndpoint(e catalog.Endpoint) http.HandlerFunc {
	desc := e.Descriptor()
	return func(w http.ResponseWriter, r *http.Request) {
		raw := make(map[string]string)
		for _, name := range desc.ParamNames() {
			if value := strings.TrimSpace(r.PathValue(name)); value != "" {
				raw[name] = value
				continue
			}
			if value := r.URL.Query().Get(name); value != "" {
				raw[name] = value
			}
		}

		args, err := tool.ParseArgs(desc, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: tool.ResultFromError(err).Failure.Message,
				Kind:  tool.ErrorCode(err),
			})
			return
		}
		s.writeResult(w, e, s.registry.Invoke(r.Context(), e.Tool, args))
	}
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	tools := make([]toolSummary, 0, s.registry.Len())
	for desc := range s.registry.List() {
		summary := toolSummary{
			Name:        desc.Name,
			Title:       desc.Title,
			Description: desc.Description,
			Params:      desc.Params,
		}
		if e, ok := catalog.Lookup(desc.Name); ok {
			summary.Route = routeFor(e)
		}
		tools = append(tools, summary)
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": tools})
}

func (s *Server) handleInvokeTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	args, err := decodeBody(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body", Message: err.Error()})
		return
	}

	e, ok := catalog.Lookup(name)
	if !ok {
		e = catalog.Endpoint{Tool: name, FailureText: "Failed to invoke " + name}
	}
	s.writeResult(w, e, s.registry.Invoke(r.Context(), name, args))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Tools: s.registry.Len()}
	if s.health != nil {
		report := s.health.Report()
		resp.Upstream = &report
		if report.State == health.StateUnhealthy {
			resp.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeResult(w http.ResponseWriter, e catalog.Endpoint, result tool.Result) {
	if result.OK() {
		writeJSON(w, http.StatusOK, result.Payload)
		return
	}

	failure := result.Failure
	switch failure.Kind {
	case tool.ToolErrorCodeMissingParameter:
		message := e.MissingText
		if message == "" {
			message = failure.Message
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: message, Kind: failure.Kind})
	case tool.ToolErrorCodeInvalidParameter:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: failure.Message, Kind: failure.Kind})
	case tool.ToolErrorCodeUnknownTool:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: failure.Message, Kind: failure.Kind})
	default:
		s.logger.Warn("upstream call failed", "tool", e.Tool, "kind", failure.Kind, "status", failure.Status, "error", failure.Message)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   e.FailureText,
			Message: failure.Message,
			Kind:    failure.Kind,
		})
	}
}

func decodeBody(body io.Reader) (map[string]any, error) {
	if body == nil {
		return map[string]any{}, nil
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var args map[string]any
	if err := decoder.Decode(&args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
