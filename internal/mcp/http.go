package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deixis/clawshell/internal/metrics"
)

// NewHTTPHandler serves the MCP streamable HTTP transport at /mcp and
// Prometheus metrics at /metrics.
func NewHTTPHandler(server *mcp.Server) http.Handler {
	metrics.Register()

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return server },
		nil,
	))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
