package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Sort the folder once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := manager.EnsureDirectories(); err != nil {
				return err
			}
			a, err := newApp(manager)
			if err != nil {
				return err
			}
			defer a.Close()
			lock, err := a.lock()
			if err != nil {
				return err
			}
			defer lock.Release()

			scanCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			report, scanErr := a.organizer.Scan(scanCtx)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sorted %s in %s: %d moved, %d skipped, %d failed\n",
				report.Root, report.Duration.Round(time.Millisecond), report.Moved, report.Skipped, report.Failed)
			if len(report.Failures) > 0 {
				rows := make([][]string, 0, len(report.Failures))
				for _, f := range report.Failures {
					rows = append(rows, []string{filepath.Base(f.Path), string(f.Kind), f.Error})
				}
				fmt.Fprintln(out, renderTable([]string{"File", "Kind", "Error"}, rows, nil))
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d file(s) could not be moved", report.Failed)
			}
			return scanErr
		},
	}
}

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the category table in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			table, err := manager.Get().Table()
			if err != nil {
				return err
			}
			root := manager.Get().Root
			rows := make([][]string, 0, len(table.Names()))
			for _, c := range table.Categories() {
				rows = append(rows, []string{c.Name, strings.Join(c.Extensions, " "), filepath.Join(root, c.Name)})
			}
			rows = append(rows, []string{table.Fallback(), "(everything else)", filepath.Join(root, table.Fallback())})
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Category", "Extensions", "Folder"}, rows, nil))
			return nil
		},
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently moved files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !manager.Get().History.Enabled {
				fmt.Fprintln(out, "History is disabled in the configuration.")
				return nil
			}
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			a, err := newApp(manager)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.organizer.History(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No moves recorded yet.")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				name := filepath.Base(r.Destination)
				if r.Renamed {
					name += " (renamed)"
				}
				rows = append(rows, []string{
					humanize.Time(r.MovedAt),
					r.Category,
					filepath.Base(r.Source),
					name,
					humanize.Bytes(uint64(max(r.Size, 0))),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Category", "File", "Stored as", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of moves to show")
	return cmd
}

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	var format string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "yaml", "yml":
				fmt.Fprint(out, manager.GetYAML())
			case "json":
				fmt.Fprintln(out, manager.GetJSON())
			default:
				return fmt.Errorf("unsupported format %q (use yaml or json)", format)
			}
			return nil
		},
	}
	show.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")

	configCmd.AddCommand(show)
	return configCmd
}
