package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"retroforge/internal/grouping"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var recursive bool
	var showDiscs bool

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Enumerate discs and title groups without touching anything",
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

			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(out, "No discs found.")
				return nil
			}

			if showDiscs {
				printDiscs(cmd, groups)
			} else {
				printGroups(cmd, groups)
			}

			discTotal := 0
			warnTotal := 0
			for _, g := range groups {
				discTotal += len(g.Discs)
				for _, d := range g.Discs {
					warnTotal += len(d.Warnings)
				}
			}
			fmt.Fprintf(out, "\n%s, %s, %s\n",
				plural(len(groups), "title"), plural(discTotal, "disc file"), plural(warnTotal, "warning"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().BoolVar(&showDiscs, "discs", false, "List individual disc files instead of title groups")
	return cmd
}

func printGroups(cmd *cobra.Command, groups []*grouping.Group) {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		kind := "single"
		if g.MultiDisc {
			kind = fmt.Sprintf("multi (%d)", len(g.LogicalDiscs()))
		}
		playlist := ""
		if g.Playlist != "" {
			playlist = filepath.Base(g.Playlist)
		}
		rows = append(rows, []string{
			g.Title,
			g.Region,
			kind,
			strconv.Itoa(len(g.Discs)),
			playlist,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Title", "Region", "Kind", "Files", "Playlist"},
		rows,
		3,
	))
}

func printDiscs(cmd *cobra.Command, groups []*grouping.Group) {
	var rows [][]string
	for _, g := range groups {
		for _, d := range g.Discs {
			number := ""
			if d.DiscNumber > 0 {
				number = strconv.Itoa(d.DiscNumber)
				if d.DiscCount > 0 {
					number += "/" + strconv.Itoa(d.DiscCount)
				}
			}
			rows = append(rows, []string{
				filepath.Base(d.Path),
				string(d.Format),
				d.Serial,
				number,
				string(d.Content),
				strings.Join(d.Warnings, "; "),
			})
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"File", "Format", "Serial", "Disc", "Content", "Warnings"},
		rows,
		3,
	))
}
