package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/db"
	"github.com/abdulachik/postgen/internal/fewshot"
	"github.com/abdulachik/postgen/internal/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	reply string
	err   error
	calls int
}

func (s *stubClient) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func newTestApp(t *testing.T, client *stubClient) *App {
	t.Helper()

	examples := fewshot.New([]fewshot.Post{
		{Text: "A", Tags: []string{"Motivation"}, Language: fewshot.English, LineCount: 3},
		{Text: "B", Tags: []string{"Career", "Motivation"}, Language: fewshot.English, LineCount: 7},
	})

	ctx := context.Background()
	history, err := db.NewStore(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.NoError(t, history.Migrate(ctx))

	a := &App{
		Examples:  examples,
		Generator: generator.New(generator.NewBuilder(examples), client),
		History:   history,
		Provider:  "stub",
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestApp_ListAvailableTags(t *testing.T) {
	a := newTestApp(t, &stubClient{})
	assert.Equal(t, []string{"Career", "Motivation"}, a.ListAvailableTags())
}

func TestApp_RequestPost(t *testing.T) {
	t.Run("records history", func(t *testing.T) {
		a := newTestApp(t, &stubClient{reply: "  Fresh post  "})
		ctx := context.Background()

		post, err := a.RequestPost(ctx, fewshot.Short, fewshot.English, "Motivation")
		require.NoError(t, err)
		assert.Equal(t, "Fresh post", post)

		items, err := a.History.ListGenerations(ctx, 10)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Motivation", items[0].Tag)
		assert.Equal(t, "Short", items[0].Length)
		assert.Equal(t, "stub", items[0].Provider)
		assert.Equal(t, int64(1), items[0].ExamplesUsed)
		assert.Equal(t, "Fresh post", items[0].Output)
		assert.Contains(t, items[0].Prompt, "Example 1:\nA")
	})

	t.Run("no matching examples still generates", func(t *testing.T) {
		client := &stubClient{reply: "post"}
		a := newTestApp(t, client)

		post, err := a.RequestPost(context.Background(), fewshot.Long, fewshot.Hinglish, "Unknown Tag")
		require.NoError(t, err)
		assert.Equal(t, "post", post)
		assert.Equal(t, 1, client.calls)
	})

	t.Run("generation error propagates and nothing is recorded", func(t *testing.T) {
		boom := errors.New("service unavailable")
		a := newTestApp(t, &stubClient{err: boom})
		ctx := context.Background()

		_, err := a.RequestPost(ctx, fewshot.Short, fewshot.English, "Motivation")
		assert.Same(t, boom, err)

		count, err := a.History.CountGenerations(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("without history", func(t *testing.T) {
		a := newTestApp(t, &stubClient{reply: "ok"})
		require.NoError(t, a.History.Close())
		a.History = nil

		post, err := a.RequestPost(context.Background(), fewshot.Medium, fewshot.English, "Career")
		require.NoError(t, err)
		assert.Equal(t, "ok", post)
	})
}

func TestApp_BuildPrompt(t *testing.T) {
	a := newTestApp(t, &stubClient{})
	prompt := a.BuildPrompt(fewshot.Medium, fewshot.English, "Career")
	assert.Contains(t, prompt, "1) Topic: Career")
	assert.Contains(t, prompt, "Example 1:\nB")
}

func TestNew(t *testing.T) {
	t.Run("missing corpus fails before anything else", func(t *testing.T) {
		dir := t.TempDir()
		cfg := &config.Config{
			PostsPath:    filepath.Join(dir, "missing.json"),
			DatabasePath: filepath.Join(dir, "history.db"),
			LLMProvider:  "groq",
		}

		_, err := New(context.Background(), cfg)
		var nf *fewshot.NotFoundError
		require.True(t, errors.As(err, &nf))

		_, statErr := os.Stat(cfg.DatabasePath)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("malformed corpus", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "posts.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"}`), 0644))

		_, err := New(context.Background(), &config.Config{PostsPath: path, LLMProvider: "groq"})
		var le *fewshot.LoadError
		assert.True(t, errors.As(err, &le))
	})

	t.Run("wires everything", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "posts.json")
		require.NoError(t, os.WriteFile(path, []byte(
			`[{"text": "A", "tags": ["Motivation"], "language": "English", "line_count": 3}]`), 0644))

		a, err := New(context.Background(), &config.Config{
			PostsPath:       path,
			DatabasePath:    filepath.Join(dir, "history.db"),
			LLMProvider:     "claude",
			AnthropicAPIKey: "sk-test",
		})
		require.NoError(t, err)
		defer a.Close()

		assert.Equal(t, []string{"Motivation"}, a.ListAvailableTags())
		assert.NotNil(t, a.History)
		assert.Equal(t, "claude", a.Provider)
	})

	t.Run("unknown provider", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "posts.json")
		require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))

		_, err := New(context.Background(), &config.Config{PostsPath: path, LLMProvider: "parrot"})
		assert.Error(t, err)
	})
}
