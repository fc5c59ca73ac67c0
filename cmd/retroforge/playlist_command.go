package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"retroforge/internal/playlist"
)

func newPlaylistCommand(ctx *commandContext) *cobra.Command {
	var (
		recursive bool
		apply     bool
		ext       string
	)

	cmd := &cobra.Command{
		Use:   "playlist [path]",
		Short: "Create or update playlists for multi-disc titles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.resolveRoot(args)
			if err != nil {
				return err
			}
			groups, err := ctx.scanGroups(cmd.Context(), root, recursive)
			if err != nil {
				return err
			}

			preferred := strings.TrimSpace(ext)
			if preferred != "" && !strings.HasPrefix(preferred, ".") {
				preferred = "." + preferred
			}
			ops, skipped := playlist.Plan(groups, playlist.Options{
				PreferredExt: preferred,
				Naming:       ctx.namingOptions(false, false),
			})

			out := cmd.OutOrStdout()
			for _, reason := range skipped {
				fmt.Fprintf(out, "skip: %s\n", reason)
			}
			if len(ops) == 0 {
				fmt.Fprintln(out, "All playlists are up to date.")
				return nil
			}
			rows := make([][]string, 0, len(ops))
			for _, op := range ops {
				rows = append(rows, []string{
					string(op.Type),
					filepath.Base(op.Path),
					strconv.Itoa(len(op.Entries)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Op", "Playlist", "Discs"},
				rows,
				2,
			))
			if !apply {
				fmt.Fprintln(out, "\nDry run; pass --apply to execute.")
				return nil
			}

			release, err := acquireApplyLock(root)
			if err != nil {
				return err
			}
			defer release()

			failed := 0
			for _, op := range ops {
				if err := playlist.Apply(op); err != nil {
					failed++
					fmt.Fprintf(out, "error: %s: %v\n", op.Path, err)
				}
			}
			fmt.Fprintf(out, "\nWrote %s\n", plural(len(ops)-failed, "playlist"))
			if failed > 0 {
				return fmt.Errorf("%s failed", plural(failed, "playlist"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write the playlists instead of printing the plan")
	cmd.Flags().StringVar(&ext, "ext", "", "Referenced disc extension (chd or cue; default prefers containers)")
	return cmd
}
