// Package mcp exposes the limit resolver and the symbolic tool dispatcher
// as Model Context Protocol tools.
//
// Tools:
//   - compute_limit: function, point and optional side ("", "+", "-")
//   - normalize_expression: rewrite user notation without evaluating it
//   - symbolic_tool: forward a raw tool call (parse, simplify, limit, ...)
//
// Stdout carries JSON-RPC in stdio mode, so all logging goes to stderr.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/njchilds90/golimit"
	"github.com/njchilds90/golimit/internal/metrics"
	"github.com/njchilds90/golimit/internal/normalize"
	"github.com/njchilds90/golimit/internal/resolver"
)

const ServerName = "golimit-mcp"

// Server wraps the resolver service and exposes it as an MCP server.
type Server struct {
	resolver  *resolver.Service
	metrics   *metrics.Metrics
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

func NewServer(svc *resolver.Service, m *metrics.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		resolver:  svc,
		metrics:   m,
		logger:    logger,
		mcpServer: server.NewMCPServer(ServerName, golimit.Version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(computeLimitTool(), s.handleComputeLimit)
	s.mcpServer.AddTool(normalizeTool(), s.handleNormalize)
	s.mcpServer.AddTool(symbolicTool(), s.handleSymbolic)
}

func computeLimitTool() mcp.Tool {
	return mcp.NewTool("compute_limit",
		mcp.WithDescription("Compute the limit of a function of x as x approaches a point. "+
			"Accepts ** or ^ for powers, ln/sen/tg/ctg aliases, pi, E, oo and decimal commas."),
		mcp.WithString("function", mcp.Required(), mcp.Description("Function of x, e.g. sin(x)/x")),
		mcp.WithString("point", mcp.Required(), mcp.Description("Target point, e.g. 0, pi/2, oo, -inf")),
		mcp.WithString("side", mcp.Description("Empty for both sides, + for the right, - for the left"), mcp.Enum("", "+", "-")),
	)
}

func normalizeTool() mcp.Tool {
	return mcp.NewTool("normalize_expression",
		mcp.WithDescription("Rewrite user-typed math notation into parser notation without evaluating it."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Raw expression text")),
	)
}

func symbolicTool() mcp.Tool {
	return mcp.NewTool("symbolic_tool",
		mcp.WithDescription("Call a symbolic kernel tool directly: parse, simplify, to_latex, free_symbols, substitute, limit, mcp_spec."),
		mcp.WithString("tool", mcp.Required(), mcp.Description("Tool name")),
		mcp.WithString("params", mcp.Description("JSON object with the tool parameters")),
	)
}

func (s *Server) handleComputeLimit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	function, err := request.RequireString("function")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	point, err := request.RequireString("point")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	side, err := resolver.ParseSide(request.GetString("side", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := s.resolver.Resolve(ctx, resolver.RawInput{FunctionText: function, PointText: point, Side: side})
	if !res.Success {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", res.TitleHint(), res.Detail)), nil
	}
	return mcp.NewToolResultText(res.Display), nil
}

func (s *Server) handleNormalize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(normalize.Expression(text)), nil
}

func (s *Server) handleSymbolic(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tool, err := request.RequireString("tool")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	params := map[string]interface{}{}
	if raw := request.GetString("params", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("params must be a JSON object: %v", err)), nil
		}
	}

	resp := golimit.HandleToolCall(golimit.ToolRequest{Tool: tool, Params: params})
	s.metrics.ObserveToolCall(tool, resp.Error != "")
	if resp.Error != "" {
		return mcp.NewToolResultError(resp.Error), nil
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
