package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/fewshot"
	"github.com/abdulachik/postgen/internal/vectorstore"
	"github.com/spf13/cobra"
)

var (
	similarK        int
	similarLanguage string
)

var similarCmd = &cobra.Command{
	Use:   "similar [text]",
	Short: "Find example posts similar to a text",
	Long: `Search the indexed example posts for ones close to the given text,
to help choose a topic before generating.

Example:
  postgen similar "switching careers after ten years in sales"`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().IntVar(&similarK, "k", 5, "Number of posts to return")
	similarCmd.Flags().StringVar(&similarLanguage, "language", "", "Only return posts in this language")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForVecLite(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	postStore, err := vectorstore.New(vectorstore.Config{
		Path:       cfg.VecLitePath,
		ConfigPath: cfg.VecLiteConfig,
	})
	if err != nil {
		return fmt.Errorf("create post store: %w", err)
	}
	defer postStore.Close()

	if postStore.Count() == 0 {
		return fmt.Errorf("no posts indexed (run 'postgen index' first)")
	}

	var results []vectorstore.SearchResult
	if similarLanguage != "" {
		language, err := fewshot.ParseLanguage(similarLanguage)
		if err != nil {
			return err
		}
		results, err = postStore.SearchByLanguage(ctx, args[0], language, similarK)
		if err != nil {
			return err
		}
	} else {
		results, err = postStore.Search(ctx, args[0], similarK)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No similar posts found.")
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(out, "%d. [%.3f] %s / %s / %s\n", i+1, r.Similarity,
			strings.Join(r.Tags, ", "), r.Length, r.Language)
		fmt.Fprintf(out, "   %s\n\n", firstLine(r.Text))
	}
	return nil
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return line
}
