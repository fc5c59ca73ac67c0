package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"retroforge/internal/converter"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		recursive    bool
		apply        bool
		deleteSource bool
		extract      bool
		workers      int
		contentMode  string
	)

	cmd := &cobra.Command{
		Use:   "convert [path]",
		Short: "Convert between BIN/CUE and container format",
		Long: `Convert compresses cue/bin images into containers through the external
tool; --extract runs the other direction. Nothing is modified unless --apply
is given. Sources are deleted only with --delete-source and only after a
verified conversion.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.resolveRoot(args)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mode, err := resolveContentMode(ctx, contentMode)
			if err != nil {
				return err
			}
			groups, err := ctx.scanGroups(cmd.Context(), root, recursive)
			if err != nil {
				return err
			}

			direction := converter.BinCueToContainer
			if extract {
				direction = converter.ContainerToBinCue
			}
			plan, err := converter.BuildPlan(groups, direction, converter.Options{
				DeleteSource: deleteSource,
				ContentMode:  mode,
				Naming:       ctx.namingOptions(false, false),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printConvertPlan(cmd, plan)
			if plan.Empty() {
				return nil
			}
			if !apply {
				fmt.Fprintln(out, "\nDry run; pass --apply to execute.")
				return nil
			}

			tool, err := converter.NewCommandTool(cfg.Tool.Binary, cfg.Tool.TimeoutSeconds)
			if err != nil {
				return err
			}
			release, err := acquireApplyLock(root)
			if err != nil {
				return err
			}
			defer release()

			if workers <= 0 {
				workers = cfg.Tool.Workers
			}
			executor := converter.NewBatchExecutor(tool, workers, ctx.ensureLogger())
			result := executor.Apply(cmd.Context(), plan)

			fmt.Fprintf(out, "\nConverted: %d succeeded, %d failed, %d skipped",
				result.Succeeded, result.Failed, result.Skipped)
			if result.Deleted > 0 {
				fmt.Fprintf(out, ", %s deleted", plural(result.Deleted, "source file"))
			}
			if result.Playlists > 0 {
				fmt.Fprintf(out, ", %s written", plural(result.Playlists, "playlist"))
			}
			fmt.Fprintln(out)
			for _, message := range result.Errors {
				fmt.Fprintf(out, "error: %s\n", message)
			}
			if !result.OK() {
				return fmt.Errorf("%s failed", plural(result.Failed, "conversion"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().BoolVar(&apply, "apply", false, "Execute the plan instead of printing it")
	cmd.Flags().BoolVar(&deleteSource, "delete-source", false, "Delete source files after verified conversions")
	cmd.Flags().BoolVar(&extract, "extract", false, "Extract containers back to BIN/CUE instead of compressing")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel conversions (default from config)")
	cmd.Flags().StringVar(&contentMode, "content-mode", "", "Cheat/educational handling: omit or standalone")
	return cmd
}

func printConvertPlan(cmd *cobra.Command, plan *converter.Plan) {
	out := cmd.OutOrStdout()
	if plan.Empty() {
		fmt.Fprintln(out, "Nothing to convert.")
	} else {
		rows := make([][]string, 0, len(plan.Operations))
		for _, op := range plan.Operations {
			rows = append(rows, []string{
				string(op.Direction),
				filepath.Base(op.Source),
				filepath.Base(op.Dest),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Direction", "Source", "Destination"},
			rows,
		))
		if len(plan.Playlists) > 0 {
			fmt.Fprintln(out, plural(len(plan.Playlists), "playlist"), "will be written after the batch.")
		}
	}
	for _, reason := range plan.Skipped {
		fmt.Fprintf(out, "skipped: %s\n", reason)
	}
}
