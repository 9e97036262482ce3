package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type noParams struct{}

type runOpenclawParams struct {
	Args []string `json:"args,omitempty" jsonschema:"arguments passed to openclaw verbatim, one element per argument"`
}

type agentParams struct {
	Message string `json:"message" jsonschema:"the message for the openclaw agent, passed as a single argument"`
}

type executeScriptParams struct {
	ScriptPath string  `json:"script_path" jsonschema:"path of the script to run with node"`
	TaskGoal   *string `json:"task_goal,omitempty" jsonschema:"optional goal passed to the script as --goal"`
}

func (h *handler) detectSystemHandler(ctx context.Context, _ *mcp.CallToolRequest, _ noParams) (*mcp.CallToolResult, any, error) {
	return jsonResult(h.svc.DetectSystem(ctx))
}

func (h *handler) runOpenclawHandler(ctx context.Context, _ *mcp.CallToolRequest, params runOpenclawParams) (*mcp.CallToolResult, any, error) {
	return jsonResult(h.svc.RunOpenclawCommand(ctx, params.Args))
}

func (h *handler) installHandler(ctx context.Context, _ *mcp.CallToolRequest, _ noParams) (*mcp.CallToolResult, any, error) {
	return jsonResult(h.svc.InstallOpenclaw(ctx))
}

func (h *handler) onboardHandler(ctx context.Context, _ *mcp.CallToolRequest, _ noParams) (*mcp.CallToolResult, any, error) {
	return jsonResult(h.svc.RunOnboard(ctx))
}

func (h *handler) doctorHandler(ctx context.Context, _ *mcp.CallToolRequest, _ noParams) (*mcp.CallToolResult, any, error) {
	return jsonResult(h.svc.RunDoctor(ctx))
}

func (h *handler) startGatewayHandler(ctx context.Context, _ *mcp.CallToolRequest, _ noParams) (*mcp.CallToolResult, any, error) {
	return jsonResult(h.svc.StartGateway(ctx))
}

func (h *handler) agentHandler(ctx context.Context, _ *mcp.CallToolRequest, params agentParams) (*mcp.CallToolResult, any, error) {
	return jsonResult(h.svc.SendAgentMessage(ctx, params.Message))
}

func (h *handler) executeScriptHandler(ctx context.Context, _ *mcp.CallToolRequest, params executeScriptParams) (*mcp.CallToolResult, any, error) {
	return jsonResult(h.svc.ExecuteScript(ctx, params.ScriptPath, params.TaskGoal))
}

func (h *handler) gatewayStatusHandler(_ context.Context, _ *mcp.CallToolRequest, _ noParams) (*mcp.CallToolResult, any, error) {
	return jsonResult(h.svc.GatewayStatus())
}

func (h *handler) stopGatewayHandler(_ context.Context, _ *mcp.CallToolRequest, _ noParams) (*mcp.CallToolResult, any, error) {
	return jsonResult(h.svc.StopGateway())
}
