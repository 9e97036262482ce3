// Package mcp provides the clawshell MCP server, registering one tool per
// dispatch operation and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/clawshell"
	"github.com/deixis/clawshell/internal/dispatch"
	"github.com/deixis/clawshell/internal/history"
)

//go:embed instructions.md
var Instructions string

// Service is the set of operations exposed as tools.
// Implemented by dispatch.Service.
type Service interface {
	DetectSystem(ctx context.Context) dispatch.SystemInfo
	RunOpenclawCommand(ctx context.Context, args []string) dispatch.CommandResult
	InstallOpenclaw(ctx context.Context) dispatch.CommandResult
	RunOnboard(ctx context.Context) dispatch.CommandResult
	RunDoctor(ctx context.Context) dispatch.CommandResult
	StartGateway(ctx context.Context) dispatch.CommandResult
	SendAgentMessage(ctx context.Context, message string) dispatch.CommandResult
	ExecuteScript(ctx context.Context, scriptPath string, goal *string) dispatch.CommandResult
	GatewayStatus() dispatch.GatewayStatus
	StopGateway() dispatch.CommandResult
	ListRuns(limit int) ([]*history.Record, error)
	InspectRun(runID string) (*history.Record, error)
}

// handler holds shared dependencies for all tool handlers.
type handler struct {
	svc Service
}

// NewServer creates an MCP server with all clawshell tools registered.
func NewServer(svc Service) *mcp.Server {
	h := &handler{svc: svc}

	opts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "clawshell", Version: clawshell.Version}, opts)

	mcp.AddTool(s, &mcp.Tool{
		Name:        dispatch.OpDetectSystem,
		Description: "Report the host OS and architecture and the installed node, npm and openclaw versions.",
	}, h.detectSystemHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: dispatch.OpRunOpenclawCommand,
		Description: `Run openclaw with the given arguments, passed through verbatim.

No shell is involved: each element of args is one argument. An empty args runs openclaw with no arguments.`,
	}, h.runOpenclawHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        dispatch.OpInstallOpenclaw,
		Description: "Install the latest openclaw globally with npm (npm install -g openclaw@latest).",
	}, h.installHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        dispatch.OpRunOnboard,
		Description: "Run openclaw onboarding and install its daemon (openclaw onboard --install-daemon).",
	}, h.onboardHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        dispatch.OpRunDoctor,
		Description: "Run openclaw diagnostics (openclaw doctor).",
	}, h.doctorHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: dispatch.OpStartGateway,
		Description: `Start the openclaw gateway on the configured port (default 18789).

Blocks until the gateway exits unless the server runs with gateway.detach enabled,
in which case it returns once the process has started. See gateway_status and stop_gateway.`,
	}, h.startGatewayHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        dispatch.OpSendAgentMessage,
		Description: "Send one message to the openclaw agent (openclaw agent --message <message>).",
	}, h.agentHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        dispatch.OpExecuteScript,
		Description: "Run a script with node, optionally passing --goal <task_goal>.",
	}, h.executeScriptHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "gateway_status",
		Description: "Report whether a detached gateway is running, with its pid and output so far.",
	}, h.gatewayStatusHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        dispatch.OpStopGateway,
		Description: "Stop the detached gateway by killing its process group.",
	}, h.stopGatewayHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_runs",
		Description: "List recent command runs, most recent first. Drill into one with inspect_run.",
	}, h.listRunsHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "inspect_run",
		Description: "Show the argv, exit status and full output of a past run.",
	}, h.inspectRunHandler)

	return s
}

// jsonResult renders v as both text content and structured content.
func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to encode result: %v", err))
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
		StructuredContent: json.RawMessage(data),
	}, nil, nil
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
