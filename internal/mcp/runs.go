package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/clawshell/internal/history"
)

type listRunsParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to list, most recent first. Default: 20."`
}

type inspectRunParams struct {
	RunID string `json:"run_id" jsonschema:"the run_id from a command result or list_runs"`
}

const defaultListLimit = 20

func (h *handler) listRunsHandler(_ context.Context, _ *mcp.CallToolRequest, params listRunsParams) (*mcp.CallToolResult, any, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	recs, err := h.svc.ListRuns(limit)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to list runs: %v", err))
	}
	if len(recs) == 0 {
		return textResult("No runs recorded.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Runs (%d):\n", len(recs))
	for _, r := range recs {
		fmt.Fprintf(&b, "  %s\n", r.Summary())
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, `Inspect with inspect_run(run_id="<id>").`)
	return textResult(b.String())
}

func (h *handler) inspectRunHandler(_ context.Context, _ *mcp.CallToolRequest, params inspectRunParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}

	rec, err := h.svc.InspectRun(params.RunID)
	if errors.Is(err, history.ErrNotFound) {
		return errorResult(fmt.Sprintf("No run %s. History may be disabled or the run has been pruned.", params.RunID))
	}
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}
	return textResult(formatRun(rec))
}

// formatRun renders a record with its output indented below the header.
func formatRun(rec *history.Record) string {
	var b strings.Builder

	status := "ok"
	if !rec.Success {
		status = "failed"
	}
	code := "none"
	if rec.ExitCode != nil {
		code = fmt.Sprint(*rec.ExitCode)
	}

	fmt.Fprintf(&b, "Run: %s (%s)\n", rec.ID, rec.Operation)
	fmt.Fprintf(&b, "Command: %s\n", strings.Join(rec.Argv, " "))
	fmt.Fprintf(&b, "Started: %s (%dms)\n", rec.StartedAt.Format("2006-01-02 15:04:05 MST"), rec.DurationMS)
	fmt.Fprintf(&b, "Status: %s, exit code %s\n", status, code)
	if rec.Truncated {
		fmt.Fprintln(&b, "Output was truncated.")
	}

	writeStream(&b, "Stdout", rec.Stdout)
	writeStream(&b, "Stderr", rec.Stderr)
	return b.String()
}

func writeStream(b *strings.Builder, name, out string) {
	if out == "" {
		return
	}
	fmt.Fprintln(b)
	fmt.Fprintf(b, "%s:\n", name)
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		fmt.Fprintf(b, "    %s\n", line)
	}
}
