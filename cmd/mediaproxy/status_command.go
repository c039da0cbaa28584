package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mediaproxy/internal/api"
	"mediaproxy/internal/client"
	"mediaproxy/internal/preflight"
)

const (
	ansiReset = "\033[0m"
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
	ansiBlue  = "\033[34m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show environment and daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)

			if asJSON {
				payload := map[string]any{
					"checks":     results,
					"all_passed": preflight.AllPassed(results),
				}
				if health, err := fetchHealth(ctx, cmd); err == nil {
					payload["daemon"] = health
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Environment", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range results {
				fmt.Fprintln(out, renderCheckLine(result, colorize))
			}
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(out, line)
			}
			health, err := fetchHealth(ctx, cmd)
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Control API", false, "not reachable", colorize))
				return nil
			}
			fmt.Fprintln(out, renderStatusLine("Control API", true, fmt.Sprintf("pid %d at %s", health.PID, ctx.apiBind()), colorize))
			if health.AuditMode {
				fmt.Fprintln(out, renderStatusLine("Audit mode", true, "enabled (experimental endpoints exposed)", colorize))
			}
			fmt.Fprintf(out, "Queue: %d total (%d pending, %d running, %d completed, %d failed, %d cancelled)\n",
				health.Queue.Total, health.Queue.Pending, health.Queue.Running,
				health.Queue.Completed, health.Queue.Failed, health.Queue.Cancelled)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func fetchHealth(ctx *commandContext, cmd *cobra.Command) (health api.HealthResponse, err error) {
	err = ctx.withClient(func(cl *client.Client) error {
		resp, healthErr := cl.Health(cmd.Context())
		if healthErr != nil {
			return healthErr
		}
		health = resp
		return nil
	})
	return health, err
}

func renderSectionHeader(title string, colorize bool) []string {
	rule := strings.Repeat("-", len(title))
	if colorize {
		title = ansiBlue + title + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{title, rule}
}

func renderCheckLine(result preflight.Result, colorize bool) string {
	return renderStatusLine(result.Name, result.Passed, result.Detail, colorize)
}

func renderStatusLine(label string, passed bool, detail string, colorize bool) string {
	marker := "ok"
	color := ansiGreen
	if !passed {
		marker = "fail"
		color = ansiRed
	}
	if colorize {
		marker = color + marker + ansiReset
	}
	if detail == "" {
		return fmt.Sprintf("[%s] %s", marker, label)
	}
	return fmt.Sprintf("[%s] %s: %s", marker, label, detail)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
