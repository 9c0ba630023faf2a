package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"murmur/internal/logging"
	"murmur/internal/queue"
	"murmur/internal/transcribe"
	"murmur/internal/transcript"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var inputPath string
	var outputPath string
	var format string
	var locale string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "transcribe --input-path <audio-file>",
		Short: "Transcribe a single audio file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if format != "" {
				if _, ok := transcript.ParseFormat(format); !ok {
					return fmt.Errorf("unknown format %q (supported: txt, srt)", format)
				}
			}

			eng := ctx.newEngine(cfg)
			if err := eng.Available(); err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			stage := transcribe.NewStage(cfg, eng, logger)

			var bar *progressbar.ProgressBar
			if !jsonOutput && isatty.IsTerminal(os.Stderr.Fd()) {
				bar = progressbar.NewOptions(100,
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("transcribing"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				stage.SetProgressFunc(func(ratio float64) {
					_ = bar.Set(int(ratio * 100))
				})
			}

			item := &queue.Item{
				SourcePath: strings.TrimSpace(inputPath),
				OutputPath: strings.TrimSpace(outputPath),
				Format:     format,
				Locale:     locale,
			}
			result, runErr := stage.Run(cmd.Context(), item)
			if bar != nil {
				_ = bar.Finish()
			}

			if jsonOutput {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
				return runErr
			}

			if runErr != nil {
				return runErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transcript written to %s (%.1fs audio in %.1fs)\n",
				result.OutputPath, result.Duration, result.ElapsedTime)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input-path", "i", "", "Audio file to transcribe")
	cmd.Flags().StringVarP(&outputPath, "output-path", "o", "", "Transcript destination (defaults to the output directory)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Transcript format: txt or srt")
	cmd.Flags().StringVarP(&locale, "locale", "l", "", "Spoken language locale, e.g. en-US")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the result record as JSON")
	_ = cmd.MarkFlagRequired("input-path")

	return cmd
}
