package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/fewshot"
	"github.com/abdulachik/postgen/internal/vectorstore"
	"github.com/spf13/cobra"
)

var indexRebuild bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index example posts for similarity search",
	Long: `Embed the example posts and store them in VecLite for 'similar'.

Indexing is append-only: posts already in the index are assumed to be the
first posts of the corpus. After re-running 'preprocess', use --rebuild.

Uses the embedding provider configured in veclite.yaml:
  - openai: OpenAI API (requires OPENAI_API_KEY env var)
  - ollama: Local Ollama server`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "Drop the existing index and index every post again")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForVecLite(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	examples, err := fewshot.Load(cfg.PostsPath)
	if err != nil {
		return err
	}

	if indexRebuild {
		slog.Info("rebuilding index", "path", cfg.VecLitePath)
		if err := vectorstore.Remove(cfg.VecLitePath); err != nil {
			return err
		}
	}

	postStore, err := vectorstore.New(vectorstore.Config{
		Path:       cfg.VecLitePath,
		ConfigPath: cfg.VecLiteConfig,
	})
	if err != nil {
		return fmt.Errorf("create post store: %w", err)
	}
	defer postStore.Close()

	existing := postStore.Count()
	from, err := vectorstore.PlanIndex(existing, examples.Len(), indexRebuild)
	if err != nil {
		return err
	}
	if from == examples.Len() {
		slog.Info("all posts already indexed",
			"total", examples.Len(),
			"in_veclite", existing,
		)
		return nil
	}

	slog.Info("indexing posts",
		"total", examples.Len(),
		"already_indexed", existing,
	)

	start := time.Now()
	indexed, err := postStore.IndexPosts(ctx, examples.Posts(), from)
	if err != nil {
		return fmt.Errorf("index posts: %w", err)
	}

	slog.Info("indexing complete",
		"indexed", indexed,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
