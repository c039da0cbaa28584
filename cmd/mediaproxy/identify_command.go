package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediaproxy/internal/media/probe"
	"mediaproxy/internal/preview"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "identify <path>",
		Short: "Probe a local source and show its preview mode",
		Long: `Probe a local media file with ffprobe and report the container, codec,
stream layout, and the preview mode the monitor would resolve for it.
Useful for troubleshooting why a source opens in identify mode instead
of playback.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			result, err := probe.Inspect(cmd.Context(), cfg.Engines.FFprobeBinary, args[0])
			if err != nil {
				return fmt.Errorf("probe %s: %w", args[0], err)
			}

			container, codec := result.Identify()
			source := preview.Source{
				Path:         args[0],
				Container:    container,
				Codec:        codec,
				Validated:    true,
				HasLocalPath: true,
			}
			mode := preview.ResolveMode(source)

			if asJSON {
				return writeJSON(cmd, map[string]any{
					"path":          args[0],
					"container":     container.String(),
					"codec":         codec.String(),
					"video_streams": result.VideoStreamCount(),
					"audio_streams": result.AudioStreamCount(),
					"duration":      result.DurationSeconds(),
					"preview_mode":  mode.String(),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path: %s\n", args[0])
			fmt.Fprintf(out, "Container: %s\n", container)
			fmt.Fprintf(out, "Codec: %s\n", codec)
			fmt.Fprintf(out, "Streams: %d video, %d audio\n", result.VideoStreamCount(), result.AudioStreamCount())
			if duration := result.DurationSeconds(); duration > 0 {
				fmt.Fprintf(out, "Duration: %.1fs\n", duration)
			}
			fmt.Fprintf(out, "Preview mode: %s\n", mode)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}
