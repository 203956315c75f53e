package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/db"
	"github.com/abdulachik/postgen/internal/fewshot"
	"github.com/abdulachik/postgen/internal/generator"
	"github.com/abdulachik/postgen/internal/llm"
)

// App is the main application container holding all dependencies.
type App struct {
	Config    *config.Config
	Examples  *fewshot.Store
	Generator *generator.Generator
	History   *db.Store // nil disables history
	Provider  string
}

// New creates a new application instance with all dependencies wired up.
// The example store is loaded first, so a missing or malformed corpus
// fails before any client or database is created.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	examples, err := fewshot.Load(cfg.PostsPath)
	if err != nil {
		return nil, err
	}

	client, err := llm.New(llm.Config{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.APIKey(),
		Model:    cfg.LLMModel,
		BaseURL:  cfg.LLMBaseURL,
		Timeout:  cfg.LLMTimeout,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Examples:  examples,
		Generator: generator.New(generator.NewBuilder(examples), client),
		Provider:  cfg.LLMProvider,
	}

	if cfg.DatabasePath != "" {
		store, err := db.NewStore(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		a.History = store
	}

	return a, nil
}

// ListAvailableTags returns every tag in the example corpus, sorted.
func (a *App) ListAvailableTags() []string {
	return a.Examples.GetTags()
}

// RequestPost generates a post. Generation errors are returned unchanged;
// a failure to record history is only logged.
func (a *App) RequestPost(ctx context.Context, length fewshot.Length, language fewshot.Language, tag string) (string, error) {
	res, err := a.Generator.Generate(ctx, length, language, tag)
	if err != nil {
		return "", err
	}

	if a.History != nil {
		_, herr := a.History.CreateGeneration(ctx, db.CreateGenerationParams{
			Tag:          tag,
			Length:       string(length),
			Language:     string(language),
			Provider:     a.Provider,
			Prompt:       res.Prompt.Text,
			Output:       res.Post,
			ExamplesUsed: int64(res.Prompt.Examples),
		})
		if herr != nil {
			slog.Warn("failed to record generation", "error", herr)
		}
	}

	return res.Post, nil
}

// BuildPrompt returns the prompt RequestPost would send, without sending it.
func (a *App) BuildPrompt(length fewshot.Length, language fewshot.Language, tag string) string {
	return a.Generator.Builder().BuildPrompt(length, language, tag)
}

// Close closes all resources.
func (a *App) Close() error {
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			return fmt.Errorf("close history: %w", err)
		}
	}
	return nil
}
