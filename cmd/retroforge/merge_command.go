package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"retroforge/internal/binmerge"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var (
		recursive    bool
		apply        bool
		deleteSource bool
	)

	cmd := &cobra.Command{
		Use:   "merge [path]",
		Short: "Merge multi-track BIN images into a single track",
		Long: `Merge finds cue sheets that reference more than one BIN file,
concatenates the tracks into one binary, and rewrites the sheet. Nothing is
modified unless --apply is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.resolveRoot(args)
			if err != nil {
				return err
			}
			descs, err := ctx.scanDiscs(cmd.Context(), root, recursive)
			if err != nil {
				return err
			}

			plan, err := binmerge.BuildPlan(descs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if plan.Empty() {
				fmt.Fprintln(out, "No multi-track images found.")
			} else {
				rows := make([][]string, 0, len(plan.Operations))
				for _, op := range plan.Operations {
					rows = append(rows, []string{
						filepath.Base(op.CuePath),
						strconv.Itoa(len(op.Tracks)),
						fmt.Sprintf("%.1f MiB", float64(op.TotalBytes)/(1<<20)),
						filepath.Base(op.DestBin),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Cue Sheet", "Tracks", "Size", "Merged Binary"},
					rows,
					1, 2,
				))
			}
			for _, reason := range plan.Skipped {
				fmt.Fprintf(out, "skipped: %s\n", reason)
			}
			if plan.Empty() {
				return nil
			}
			if !apply {
				fmt.Fprintln(out, "\nDry run; pass --apply to execute.")
				return nil
			}

			release, err := acquireApplyLock(root)
			if err != nil {
				return err
			}
			defer release()

			result := binmerge.NewService(ctx.ensureLogger()).Apply(plan, deleteSource)
			fmt.Fprintf(out, "\nMerged: %d succeeded, %d failed", result.Succeeded, result.Failed)
			if result.Deleted > 0 {
				fmt.Fprintf(out, ", %s deleted", plural(result.Deleted, "track file"))
			}
			fmt.Fprintln(out)
			for _, message := range result.Errors {
				fmt.Fprintf(out, "error: %s\n", message)
			}
			if !result.OK() {
				return fmt.Errorf("%s failed", plural(result.Failed, "merge"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().BoolVar(&apply, "apply", false, "Execute the plan instead of printing it")
	cmd.Flags().BoolVar(&deleteSource, "delete-source", false, "Delete source track files after a verified merge")
	return cmd
}
