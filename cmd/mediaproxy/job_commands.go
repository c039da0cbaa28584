package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mediaproxy/internal/api"
	"mediaproxy/internal/client"
	"mediaproxy/internal/deliver"
)

func newJobCommand(ctx *commandContext) *cobra.Command {
	jobCmd := &cobra.Command{
		Use:   "job",
		Short: "Submit and drive delivery jobs",
	}

	jobCmd.AddCommand(newJobCreateCommand(ctx))
	jobCmd.AddCommand(newJobStartCommand(ctx))
	jobCmd.AddCommand(newJobCancelCommand(ctx))
	jobCmd.AddCommand(newJobReportCommand(ctx))

	return jobCmd
}

func newJobCreateCommand(ctx *commandContext) *cobra.Command {
	var engine string
	var settings deliver.Settings
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "create <source>...",
		Short: "Submit source files as a new delivery job",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.CreateJobRequest{
				SourcePaths:     args,
				Engine:          engine,
				DeliverSettings: settings,
			}

			return ctx.withClient(func(cl *client.Client) error {
				jobID, err := cl.CreateJob(cmd.Context(), req)
				if err != nil {
					printValidationFields(cmd, err)
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.CreateJobResponse{JobID: jobID})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created job %s\n", jobID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&engine, "engine", "", "Processing engine (default chosen by routing)")
	cmd.Flags().StringVar(&settings.Video.Codec, "video-codec", "", "Delivery video codec")
	cmd.Flags().StringVar(&settings.Audio.Codec, "audio-codec", "", "Delivery audio codec")
	cmd.Flags().StringVar(&settings.File.Container, "container", "", "Delivery container format")
	cmd.Flags().StringVar(&settings.File.NamingTemplate, "template", "", "Output naming template")
	cmd.Flags().StringVar(&settings.OutputDir, "output-dir", "", "Delivery output directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newJobStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start <job-id>",
		Short: "Hand a pending job to its engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(cl *client.Client) error {
				job, err := cl.StartJob(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Job %s is %s\n", shortID(job.UUID), job.Status)
				return nil
			})
		},
	}
}

func newJobCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Request best-effort cancellation of a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(cl *client.Client) error {
				job, err := cl.CancelJob(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if job.CancelRequested {
					fmt.Fprintf(out, "Cancellation requested for job %s; the engine stops when it next checks in\n", shortID(job.UUID))
				} else {
					fmt.Fprintf(out, "Job %s already finished as %s\n", shortID(job.UUID), job.Status)
				}
				return nil
			})
		},
		Args: cobra.ExactArgs(1),
	}
}

func newJobReportCommand(ctx *commandContext) *cobra.Command {
	var report api.StatusReportRequest

	cmd := &cobra.Command{
		Use:   "report <job-id>",
		Short: "Report engine progress or a terminal result for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(cl *client.Client) error {
				job, err := cl.ReportStatus(cmd.Context(), args[0], report)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Job %s is %s (%.1f%%)\n", shortID(job.UUID), job.Status, job.ProgressPercent)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&report.Status, "status", "", "Terminal status (completed, failed, cancelled); empty means progress only")
	cmd.Flags().Float64Var(&report.ProgressPercent, "percent", 0, "Progress percentage")
	cmd.Flags().StringVar(&report.ProgressMessage, "message", "", "Progress message")
	cmd.Flags().StringVar(&report.ErrorMessage, "error", "", "Error message for failed jobs")
	return cmd
}

func printValidationFields(cmd *cobra.Command, err error) {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return
	}
	out := cmd.ErrOrStderr()
	for _, field := range apiErr.Fields {
		fmt.Fprintf(out, "  %s: %s\n", field.Field, field.Message)
	}
}
