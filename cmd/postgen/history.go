package main

import (
	"context"
	"fmt"

	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/db"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyFull  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent generations",
	Long:  `Display recently generated posts and per-topic totals.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of generations to show")
	historyCmd.Flags().BoolVar(&historyFull, "full", false, "Also print the prompt of each generation")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForHistory(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	// Ensure migrations are run
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	total, err := store.CountGenerations(ctx)
	if err != nil {
		return fmt.Errorf("count generations: %w", err)
	}

	byTag, err := store.CountGenerationsByTag(ctx)
	if err != nil {
		return fmt.Errorf("count generations by tag: %w", err)
	}

	items, err := store.ListGenerations(ctx, int64(historyLimit))
	if err != nil {
		return fmt.Errorf("list generations: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== PostGen History ===")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Database: %s\n", cfg.DatabasePath)
	fmt.Fprintf(out, "Total generations: %d\n", total)
	fmt.Fprintln(out)

	if len(byTag) > 0 {
		fmt.Fprintln(out, "By topic:")
		for _, row := range byTag {
			fmt.Fprintf(out, "  %s: %d\n", row.Tag, row.Count)
		}
		fmt.Fprintln(out)
	}

	for _, g := range items {
		fmt.Fprintf(out, "#%d  %s  %s / %s / %s  (%s, %d examples)\n",
			g.ID,
			g.CreatedAt.Format("2006-01-02 15:04"),
			g.Tag, g.Length, g.Language,
			g.Provider, g.ExamplesUsed,
		)
		if historyFull {
			fmt.Fprintf(out, "--- prompt ---\n%s\n--- post ---\n", g.Prompt)
		}
		fmt.Fprintln(out, g.Output)
		fmt.Fprintln(out)
	}

	return nil
}
