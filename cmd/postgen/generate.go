package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/postgen/internal/app"
	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/fewshot"
	"github.com/spf13/cobra"
)

var (
	generateTag        string
	generateLength     string
	generateLanguage   string
	generatePromptOnly bool
	generateNoHistory  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a LinkedIn post",
	Long: `Generate a LinkedIn post for a topic using matching example posts
as a style guide.

Examples:
  postgen generate --tag "Job Search"
  postgen generate --tag "Mental Health" --length Medium --language Hinglish
  postgen generate --tag Motivation --prompt-only    # print the prompt only`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateTag, "tag", "", "Topic of the post (see 'postgen tags')")
	generateCmd.Flags().StringVar(&generateLength, "length", string(fewshot.Short), "Post length: Short, Medium or Long")
	generateCmd.Flags().StringVar(&generateLanguage, "language", string(fewshot.English), "Post language: English or Hinglish")
	generateCmd.Flags().BoolVar(&generatePromptOnly, "prompt-only", false, "Print the prompt without calling the LLM")
	generateCmd.Flags().BoolVar(&generateNoHistory, "no-history", false, "Do not record the generation")
	generateCmd.MarkFlagRequired("tag")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	length, err := fewshot.ParseLength(generateLength)
	if err != nil {
		return err
	}
	language, err := fewshot.ParseLanguage(generateLanguage)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if generatePromptOnly {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	} else if err := cfg.ValidateForGeneration(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if generatePromptOnly || generateNoHistory {
		cfg.DatabasePath = ""
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if generatePromptOnly {
		fmt.Fprintln(out, a.BuildPrompt(length, language, generateTag))
		return nil
	}

	slog.Info("generating post",
		"tag", generateTag,
		"length", length,
		"language", language,
		"provider", cfg.LLMProvider,
	)

	post, err := a.RequestPost(ctx, length, language, generateTag)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, post)
	return nil
}
