package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/enrich"
	"github.com/abdulachik/postgen/internal/llm"
	"github.com/spf13/cobra"
)

var (
	preprocessIn  string
	preprocessOut string
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Annotate raw posts with metadata",
	Long: `Ask the LLM for the line count, language and tags of every raw post,
unify similar tags, and write the processed corpus used by 'generate'.

Examples:
  postgen preprocess
  postgen preprocess --in data/raw_posts.json --out data/processed_posts.json`,
	RunE: runPreprocess,
}

func init() {
	preprocessCmd.Flags().StringVar(&preprocessIn, "in", "", "Raw posts file (default: RAW_POSTS_PATH)")
	preprocessCmd.Flags().StringVar(&preprocessOut, "out", "", "Processed posts file (default: POSTS_PATH)")
	rootCmd.AddCommand(preprocessCmd)
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForGeneration(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	in := preprocessIn
	if in == "" {
		in = cfg.RawPostsPath
	}
	out := preprocessOut
	if out == "" {
		out = cfg.PostsPath
	}

	client, err := llm.New(llm.Config{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.APIKey(),
		Model:    cfg.LLMModel,
		BaseURL:  cfg.LLMBaseURL,
		Timeout:  cfg.LLMTimeout,
	})
	if err != nil {
		return err
	}

	posts, err := enrich.New(client).Process(ctx, in, out)
	if err != nil {
		return fmt.Errorf("process posts: %w", err)
	}

	slog.Info("processed posts successfully", "count", len(posts), "out", out)
	return nil
}
