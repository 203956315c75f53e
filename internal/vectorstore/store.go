// Package vectorstore provides a VecLite-based similarity index over the
// example posts.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/veclite"
	"github.com/abdulachik/postgen/internal/fewshot"
)

const postsCollection = "posts"

// Config holds configuration for the PostStore.
type Config struct {
	// Path to the VecLite database file (e.g., "data/posts.veclite").
	Path string

	// ConfigPath is the path to veclite.yaml config file (optional).
	// If empty, searches ./veclite.yaml, ~/.veclite/config.yaml.
	ConfigPath string
}

// PostStore wraps VecLite for example post storage and search.
type PostStore struct {
	vecdb    *veclite.DB
	coll     *veclite.Collection
	embedder veclite.Embedder
}

// SearchResult is one post returned by a search.
type SearchResult struct {
	VecLiteID  uint64
	Index      int // position of the post in the example store
	Text       string
	Tags       []string
	Language   string
	Length     string
	Similarity float32
}

// New opens the post index using veclite.yaml configuration.
func New(cfg Config) (*PostStore, error) {
	slog.Debug("creating PostStore", "path", cfg.Path, "config_path", cfg.ConfigPath)

	vecliteCfg, err := veclite.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load veclite config: %w", err)
	}

	embedder, err := veclite.NewEmbedderFromConfig(vecliteCfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	vecdb, err := veclite.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open veclite db: %w", err)
	}

	coll, err := vecdb.CreateCollection(postsCollection,
		veclite.WithDimension(embedder.Dimension()),
		veclite.WithDistanceType(veclite.DistanceCosine),
		veclite.WithHNSW(16, 200),
		veclite.WithTextIndex("text", "tags", "language", "length"),
		veclite.WithEmbedder(embedder),
	)
	if err != nil {
		// Collection might already exist
		coll, err = vecdb.GetCollection(postsCollection)
		if err != nil {
			vecdb.Close()
			return nil, fmt.Errorf("get collection: %w", err)
		}
	}

	return &PostStore{
		vecdb:    vecdb,
		coll:     coll,
		embedder: embedder,
	}, nil
}

// Close closes the VecLite database.
func (s *PostStore) Close() error {
	if s.vecdb != nil {
		return s.vecdb.Close()
	}
	return nil
}

// PlanIndex returns the position in the corpus to resume indexing from.
// The index is append-only: it assumes the first existing posts of the
// corpus are the ones already indexed. An index larger than the corpus
// means the corpus was rewritten and must be rebuilt.
func PlanIndex(existing, total int, rebuild bool) (int, error) {
	if rebuild {
		return 0, nil
	}
	if existing > total {
		return 0, fmt.Errorf("index holds %d posts but the corpus has %d (re-run with --rebuild)", existing, total)
	}
	return existing, nil
}

// Remove deletes the index at path so it can be rebuilt. A missing index
// is not an error.
func Remove(path string) error {
	if err := os.RemoveAll(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove index: %w", err)
	}
	return nil
}

// IndexPosts embeds and stores posts[from:], then syncs to disk. Each post
// keeps its position in posts as its index, so from must come from
// PlanIndex. It returns the number written.
func (s *PostStore) IndexPosts(ctx context.Context, posts []fewshot.Post, from int) (int, error) {
	indexed := 0
	for i := from; i < len(posts); i++ {
		p := posts[i]
		select {
		case <-ctx.Done():
			return indexed, ctx.Err()
		default:
		}

		if _, err := s.coll.InsertText(p.Text, postPayload(i, p)); err != nil {
			return indexed, fmt.Errorf("insert post %d: %w", i, err)
		}
		indexed++
	}

	if err := s.vecdb.Sync(); err != nil {
		return indexed, fmt.Errorf("sync: %w", err)
	}

	slog.Info("indexed posts", "count", indexed)
	return indexed, nil
}

func postPayload(index int, p fewshot.Post) map[string]any {
	return map[string]any{
		"index":    index,
		"text":     p.Text,
		"tags":     strings.Join(p.Tags, ", "),
		"language": string(p.Language),
		"length":   string(p.Length()),
	}
}

// Search returns the k posts closest to query, mixing vector similarity
// with BM25 over the indexed fields.
func (s *PostStore) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	queryVec, err := s.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.coll.HybridSearch(queryVec, query,
		veclite.TopK(k),
		veclite.WithVectorWeight(1.0),
		veclite.WithTextWeight(0.3),
	)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}

	return convertResults(results), nil
}

// SearchByLanguage restricts a vector search to one language.
func (s *PostStore) SearchByLanguage(ctx context.Context, query string, language fewshot.Language, k int) ([]SearchResult, error) {
	queryVec, err := s.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.coll.Search(queryVec,
		veclite.TopK(k),
		veclite.WithFilter(veclite.Equal("language", string(language))),
	)
	if err != nil {
		return nil, fmt.Errorf("search by language: %w", err)
	}

	return convertResults(results), nil
}

// Count returns the number of posts in the index.
func (s *PostStore) Count() int {
	return s.coll.Count()
}

// Stats returns statistics about the index.
func (s *PostStore) Stats() veclite.CollectionStats {
	return s.coll.Stats()
}

func convertResults(results []veclite.Result) []SearchResult {
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		sr := SearchResult{
			VecLiteID:  r.Record.ID,
			Similarity: r.Score,
		}
		applyPayload(&sr, r.Record.Payload)

		if sr.Text == "" && r.Record.Content != "" {
			sr.Text = r.Record.Content
		}

		out = append(out, sr)
	}
	return out
}

func applyPayload(sr *SearchResult, payload map[string]any) {
	if payload == nil {
		return
	}

	switch idx := payload["index"].(type) {
	case int:
		sr.Index = idx
	case int64:
		sr.Index = int(idx)
	case float64:
		sr.Index = int(idx)
	}
	if text, ok := payload["text"].(string); ok {
		sr.Text = text
	}
	if tags, ok := payload["tags"].(string); ok && tags != "" {
		sr.Tags = strings.Split(tags, ", ")
	}
	if language, ok := payload["language"].(string); ok {
		sr.Language = language
	}
	if length, ok := payload["length"].(string); ok {
		sr.Length = length
	}
}
