package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediaproxy/internal/api"
	"mediaproxy/internal/client"
	"mediaproxy/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the delivery queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueStatsCommand(ctx))
	queueCmd.AddCommand(newQueueResetCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List delivery jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]queue.Status, 0, len(listStatuses))
			for _, raw := range listStatuses {
				status, ok := queue.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q", raw)
				}
				statuses = append(statuses, status)
			}

			return ctx.withClient(func(cl *client.Client) error {
				jobs, err := cl.ListQueue(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.QueueListResponse{Jobs: jobs})
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, buildQueueRow(job))
				}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Job", "Status", "Engine", "Progress", "Source"}, rows, aligns))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Filter by status (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one delivery job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(cl *client.Client) error {
				job, err := cl.GetJob(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.JobResponse{Job: job})
				}
				printJobDetail(cmd, job)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newQueueStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show job counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(cl *client.Client) error {
				health, err := cl.Health(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, health.Queue)
				}

				rows := [][]string{
					{"Pending", strconv.Itoa(health.Queue.Pending)},
					{"Running", strconv.Itoa(health.Queue.Running)},
					{"Completed", strconv.Itoa(health.Queue.Completed)},
					{"Failed", strconv.Itoa(health.Queue.Failed)},
					{"Cancelled", strconv.Itoa(health.Queue.Cancelled)},
					{"Total", strconv.Itoa(health.Queue.Total)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newQueueResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove every job from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(cl *client.Client) error {
				removed, err := cl.ResetQueue(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d jobs\n", removed)
				return nil
			})
		},
	}
}

func buildQueueRow(job api.JobView) []string {
	source := ""
	if len(job.SourcePaths) > 0 {
		source = job.SourcePaths[0]
		if len(job.SourcePaths) > 1 {
			source = fmt.Sprintf("%s (+%d more)", source, len(job.SourcePaths)-1)
		}
	}
	return []string{
		shortID(job.UUID),
		job.Status,
		job.Engine,
		fmt.Sprintf("%.0f%%", job.ProgressPercent),
		source,
	}
}

func printJobDetail(cmd *cobra.Command, job api.JobView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job: %s\n", job.UUID)
	fmt.Fprintf(out, "Status: %s\n", job.Status)
	fmt.Fprintf(out, "Engine: %s\n", job.Engine)
	fmt.Fprintf(out, "Progress: %.1f%%\n", job.ProgressPercent)
	if job.ProgressMessage != "" {
		fmt.Fprintf(out, "Progress message: %s\n", job.ProgressMessage)
	}
	if job.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", job.ErrorMessage)
	}
	fmt.Fprintf(out, "Cancel requested: %s\n", yesNo(job.CancelRequested))
	fmt.Fprintf(out, "Sources:\n")
	for _, path := range job.SourcePaths {
		fmt.Fprintf(out, "  %s\n", path)
	}
	fmt.Fprintf(out, "Created: %s\n", formatTimestamp(job.CreatedAt))
	if job.StartedAt != nil {
		fmt.Fprintf(out, "Started: %s\n", formatTimestamp(*job.StartedAt))
	}
	if job.FinishedAt != nil {
		fmt.Fprintf(out, "Finished: %s\n", formatTimestamp(*job.FinishedAt))
	}
}

func shortID(uuid string) string {
	if idx := strings.IndexByte(uuid, '-'); idx > 0 {
		return uuid[:idx]
	}
	return uuid
}

func formatTimestamp(ts time.Time) string {
	return ts.Local().Format("2006-01-02 15:04:05")
}
