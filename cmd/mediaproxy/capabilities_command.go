package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediaproxy/internal/capabilities"
	"mediaproxy/internal/client"
)

func newCapabilitiesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "Show the daemon's engine capability snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(cl *client.Client) error {
				snapshot, err := cl.Capabilities(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, snapshot)
				}

				rows := [][]string{
					buildEngineRow("FFmpeg", snapshot.FFmpeg),
					buildEngineRow(resolveLabel(snapshot.Resolve), snapshot.Resolve.EngineStatus),
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable([]string{"Engine", "Available", "Version", "Detail"}, rows, nil))
				fmt.Fprintf(out, "RAW routing: %s", snapshot.RawRouting)
				if snapshot.RawRoutingReason != "" {
					fmt.Fprintf(out, " (%s)", snapshot.RawRoutingReason)
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Probed at: %s\n", snapshot.Timestamp)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func buildEngineRow(name string, status capabilities.EngineStatus) []string {
	detail := status.Path
	if !status.Available {
		detail = status.Reason
	}
	return []string{name, yesNo(status.Available), status.Version, detail}
}

func resolveLabel(status capabilities.ResolveStatus) string {
	if status.Edition == "" {
		return "DaVinci Resolve"
	}
	return "DaVinci Resolve (" + status.Edition + ")"
}

func newRoutingCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routing <path>",
		Short: "Show how the daemon would route a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(cl *client.Client) error {
				decision, err := cl.Routing(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, decision)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Path: %s\n", decision.Path)
				fmt.Fprintf(out, "Requires RAW engine: %s\n", yesNo(decision.Routing.RequiresResolve))
				fmt.Fprintf(out, "Can process: %s\n", yesNo(decision.Routing.CanProcess))
				if decision.Routing.Reason != "" {
					fmt.Fprintf(out, "Reason: %s\n", decision.Routing.Reason)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}
