package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deixis/clawshell/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"ls"},
		Short:   "List recent runs, most recent first",
		GroupID: "runs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := a.svc.ListRuns(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			for _, r := range recs {
				writeRecordLine(out, r)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list (0 for all)")
	return cmd
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "inspect <run-id>",
		Short:   "Print the stored record of one run as JSON",
		GroupID: "runs",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.svc.InspectRun(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
}

// writeRecordLine prints one history entry with its status highlighted.
func writeRecordLine(w io.Writer, r *history.Record) {
	status := okStyle.Render(fmt.Sprintf("%-6s", "ok"))
	if !r.Success {
		status = failStyle.Render(fmt.Sprintf("%-6s", "failed"))
	}
	code := "-"
	if r.ExitCode != nil {
		code = fmt.Sprint(*r.ExitCode)
	}
	fmt.Fprintf(w, "%s  %s  %-20s %s exit=%-4s %s\n",
		idStyle.Render(r.ID),
		r.StartedAt.Local().Format(time.DateTime),
		r.Operation,
		status,
		code,
		strings.Join(r.Argv, " "))
}
