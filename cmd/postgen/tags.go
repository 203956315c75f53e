package main

import (
	"fmt"

	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/fewshot"
	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List available topics",
	Long:  `List every tag found in the example corpus, sorted.`,
	RunE:  runTags,
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}

func runTags(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := fewshot.Load(cfg.PostsPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, tag := range store.GetTags() {
		fmt.Fprintln(out, tag)
	}
	return nil
}
