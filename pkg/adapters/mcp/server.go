// Package mcp exposes the dashboard to Model Context Protocol clients:
// agents can refresh charts, read them and switch the theme.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/tally"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ChartsURI is the resource listing every live chart.
const ChartsURI = "tally://charts"

// Dashboard is the part of tally.Dashboard the MCP tools drive.
type Dashboard interface {
	RefreshAll(ctx context.Context) error
	SetTheme(name string) error
	Theme() string
	Themes() []string
	Style() domain.Style
	Chart(slot domain.Slot) (domain.ChartConfig, bool)
	Charts() map[domain.Slot]domain.ChartConfig
}

var _ Dashboard = (*tally.Dashboard)(nil)

// ChartsResponse lists chart configurations by slot.
type ChartsResponse struct {
	Charts map[domain.Slot]domain.ChartConfig `json:"charts" jsonschema_description:"Live chart configurations keyed by slot"`
}

// ThemeResponse reports the active theme and the style it resolves to.
type ThemeResponse struct {
	Theme  string       `json:"theme" jsonschema_description:"Active theme name"`
	Themes []string     `json:"themes" jsonschema_description:"Available theme names"`
	Style  domain.Style `json:"style" jsonschema_description:"Resolved style of the active theme"`
}

type chartArgs struct {
	Slot string `json:"slot"`
}

type themeArgs struct {
	Theme string `json:"theme"`
}

// Server wraps a Dashboard as an MCP server.
type Server struct {
	dashboard Dashboard
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates the MCP server for d.
func NewServer(d Dashboard, opts ...Option) *Server {
	s := &Server{
		dashboard: d,
		logger:    slog.New(slog.DiscardHandler),
		mcpServer: server.NewMCPServer("tally-mcp", tally.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves SSE on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	r := chi.NewRouter()
	r.Use(corsMiddleware)
	r.Handle("/sse", sseServer.SSEHandler())
	r.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("refresh_charts",
		mcp.WithDescription("Rebuild every chart from the current records and theme, then return them."),
		mcp.WithOutputSchema[ChartsResponse](),
	), mcp.NewStructuredToolHandler(s.handleRefresh))

	s.mcpServer.AddTool(mcp.NewTool("get_chart",
		mcp.WithDescription("Return the live configuration of one chart."),
		mcp.WithString("slot", mcp.Required(),
			mcp.Description("Chart slot"),
			mcp.Enum(slotNames()...),
		),
	), mcp.NewTypedToolHandler(s.handleGetChart))

	s.mcpServer.AddTool(mcp.NewTool("set_theme",
		mcp.WithDescription("Activate a theme. Charts are refreshed with the new colors."),
		mcp.WithString("theme", mcp.Required(), mcp.Description("Theme name, e.g. light or dark")),
		mcp.WithOutputSchema[ThemeResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetTheme))
}

func (s *Server) handleRefresh(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (ChartsResponse, error) {
	if err := s.dashboard.RefreshAll(ctx); err != nil {
		s.logger.Warn("MCP refresh failed", "err", err)
		return ChartsResponse{}, err
	}
	return ChartsResponse{Charts: s.dashboard.Charts()}, nil
}

func (s *Server) handleGetChart(ctx context.Context, _ mcp.CallToolRequest, args chartArgs) (*mcp.CallToolResult, error) {
	slot, err := domain.ParseSlot(args.Slot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg, ok := s.dashboard.Chart(slot)
	if !ok {
		return mcp.NewToolResultErrorf("no live chart in slot %s", slot), nil
	}
	return mcp.NewToolResultJSON(cfg)
}

func (s *Server) handleSetTheme(ctx context.Context, _ mcp.CallToolRequest, args themeArgs) (ThemeResponse, error) {
	if err := s.dashboard.SetTheme(args.Theme); err != nil {
		return ThemeResponse{}, err
	}
	return ThemeResponse{
		Theme:  s.dashboard.Theme(),
		Themes: s.dashboard.Themes(),
		Style:  s.dashboard.Style(),
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ChartsURI, "Live charts",
		mcp.WithResourceDescription("Every live chart configuration keyed by slot"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(ChartsResponse{Charts: s.dashboard.Charts()})
		if err != nil {
			return nil, fmt.Errorf("failed to encode charts: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ChartsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func slotNames() []string {
	var names []string
	for _, s := range domain.Slots() {
		names = append(names, string(s))
	}
	return names
}
