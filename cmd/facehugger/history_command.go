package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"facehugger/internal/history"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs from the run journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, err := openHistory(ctx, out)
			if err != nil || store == nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Manifest", "Mode", "Status", "Entries", "Cache", "Duration"},
				historyRows(runs),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its entries (an unambiguous id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, err := openHistory(ctx, out)
			if err != nil || store == nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			summary := historyRows([]history.Run{*run})[0]
			fmt.Fprintf(out, "Run %s (%s)\n", run.ID, summary[4])
			fmt.Fprintf(out, "Manifest: %s\n", run.ManifestPath)
			fmt.Fprintf(out, "Started: %s  Mode: %s  Duration: %s\n", summary[1], summary[3], summary[7])
			fmt.Fprintf(out, "Cache changes: %s\n", summary[6])
			if len(run.Entries) == 0 {
				fmt.Fprintln(out, "No entries recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Repo", "Ref", "Outcome", "Checked", "Mismatches", "Error"},
				entryRows(run.Entries),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

// openHistory opens the journal, or reports that it is disabled and
// returns a nil store.
func openHistory(ctx *commandContext, out io.Writer) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		fmt.Fprintln(out, "Run journal disabled (history.enabled = false)")
		return nil, nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open run journal: %w", err)
	}
	return store, nil
}

func entryRows(entries []history.EntryRecord) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.Repo,
			entry.Ref,
			entry.Outcome,
			strconv.Itoa(entry.CheckedCount),
			strconv.Itoa(entry.Mismatches),
			entry.Error,
		})
	}
	return rows
}

func historyRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		mode := "download"
		if run.DryRun {
			mode = "dry-run"
		}
		duration := "-"
		if d := run.Duration(); d > 0 {
			duration = d.Round(time.Second).String()
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format(historyTimeLayout),
			run.ManifestPath,
			mode,
			string(run.Status),
			strconv.Itoa(len(run.Entries)),
			fmt.Sprintf("+%d/-%d", run.Added, run.Removed),
			duration,
		})
	}
	return rows
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
