package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"retroforge/internal/classify"
	"retroforge/internal/renamer"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	var (
		recursive        bool
		apply            bool
		flatten          bool
		restoreArticles  bool
		keepLanguageTags bool
		contentMode      string
	)

	cmd := &cobra.Command{
		Use:   "rename [path]",
		Short: "Rename disc files to canonical names",
		Long: `Rename plans canonical names for every title group and prints the plan.
Nothing is modified unless --apply is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.resolveRoot(args)
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

			plan, err := renamer.BuildPlan(root, groups, renamer.Options{
				Flatten:     flatten,
				ContentMode: mode,
				Naming:      ctx.namingOptions(restoreArticles, keepLanguageTags),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printRenamePlan(cmd, plan)
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

			result := renamer.NewExecutor(ctx.ensureLogger()).Apply(cmd.Context(), plan)
			fmt.Fprintf(out, "\nApplied: %d succeeded, %d failed, %d skipped, %d conflicts\n",
				result.Succeeded, result.Failed, result.Skipped, len(result.Conflicts))
			for _, conflict := range result.Conflicts {
				fmt.Fprintf(out, "conflict: %s\n", conflict)
			}
			for _, message := range result.Errors {
				fmt.Fprintf(out, "error: %s\n", message)
			}
			if !result.OK() {
				return fmt.Errorf("%s failed", plural(result.Failed, "operation"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().BoolVar(&apply, "apply", false, "Execute the plan instead of printing it")
	cmd.Flags().BoolVar(&flatten, "flatten", false, "Move files out of per-game folders and delete the emptied folders")
	cmd.Flags().BoolVar(&restoreArticles, "restore-articles", false, `Move a trailing ", The" to the front of titles`)
	cmd.Flags().BoolVar(&keepLanguageTags, "keep-language-tags", false, "Keep parenthetical language lists in titles")
	cmd.Flags().StringVar(&contentMode, "content-mode", "", "Cheat/educational handling: omit or standalone")
	return cmd
}

func resolveContentMode(ctx *commandContext, flag string) (classify.HandlingMode, error) {
	if flag != "" {
		return classify.ParseHandlingMode(flag)
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.ContentMode(), nil
}

func printRenamePlan(cmd *cobra.Command, plan *renamer.Plan) {
	out := cmd.OutOrStdout()
	if plan.Empty() {
		fmt.Fprintln(out, "Everything is already canonical.")
	} else {
		rows := make([][]string, 0, len(plan.Operations))
		for _, op := range plan.Operations {
			dest := filepath.Base(op.Dest)
			if op.Kind == renamer.KindDeleteFolder {
				dest = ""
			}
			rows = append(rows, []string{string(op.Kind), filepath.Base(op.Source), dest})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Op", "Source", "Destination"},
			rows,
		))
	}
	for _, warning := range plan.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warning)
	}
}
