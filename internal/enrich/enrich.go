// Package enrich annotates raw posts with line count, language and tags
// using an LLM, and folds similar tags together.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/abdulachik/postgen/internal/fewshot"
	"github.com/abdulachik/postgen/internal/llm"
)

// Metadata is what the model extracts from a single post.
type Metadata struct {
	LineCount int      `json:"line_count"`
	Language  string   `json:"language"`
	Tags      []string `json:"tags"`
}

// UnmarshalJSON accepts line_count as any whole JSON number (3 or 3.0).
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw struct {
		LineCount json.RawMessage `json:"line_count"`
		Language  string          `json:"language"`
		Tags      []string        `json:"tags"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	lineCount := 0
	if len(raw.LineCount) > 0 && string(raw.LineCount) != "null" {
		n, err := fewshot.ParseLineCount(raw.LineCount)
		if err != nil {
			return fmt.Errorf("line_count: %w", err)
		}
		lineCount = n
	}

	*m = Metadata{LineCount: lineCount, Language: raw.Language, Tags: raw.Tags}
	return nil
}

// FallbackMetadata is used when the model reply cannot be parsed.
func FallbackMetadata() Metadata {
	return Metadata{LineCount: 0, Language: "Unknown", Tags: []string{}}
}

// Parsed is the outcome of parsing a model reply: either the parsed Value,
// or a Fallback value with the parse error kept in Err.
type Parsed[T any] struct {
	Value    T
	Fallback bool
	Err      error
}

// Enricher runs the enrichment prompts against an LLM.
type Enricher struct {
	client llm.Client
}

// New creates an Enricher.
func New(client llm.Client) *Enricher {
	return &Enricher{client: client}
}

// ExtractMetadata asks the model for a post's metadata. A transport failure
// is returned as an error; an unparseable reply yields FallbackMetadata.
func (e *Enricher) ExtractMetadata(ctx context.Context, text string) (Parsed[Metadata], error) {
	response, err := e.client.Complete(ctx, fmt.Sprintf(MetadataPrompt, text))
	if err != nil {
		return Parsed[Metadata]{}, fmt.Errorf("complete: %w", err)
	}

	var meta Metadata
	if err := decodeReply(response, &meta); err != nil {
		slog.Warn("failed to parse metadata, using fallback", "error", err)
		return Parsed[Metadata]{Value: FallbackMetadata(), Fallback: true, Err: err}, nil
	}
	if meta.Tags == nil {
		meta.Tags = []string{}
	}

	return Parsed[Metadata]{Value: meta}, nil
}

// UnifyTags asks the model to map every tag onto a shorter unified list.
// An unparseable reply yields the identity mapping.
func (e *Enricher) UnifyTags(ctx context.Context, tags []string) (Parsed[map[string]string], error) {
	response, err := e.client.Complete(ctx, fmt.Sprintf(UnifyTagsPrompt, strings.Join(tags, ",")))
	if err != nil {
		return Parsed[map[string]string]{}, fmt.Errorf("complete: %w", err)
	}

	var mapping map[string]string
	if err := decodeReply(response, &mapping); err != nil {
		slog.Warn("failed to parse unified tags, keeping originals", "error", err)
		identity := make(map[string]string, len(tags))
		for _, tag := range tags {
			identity[tag] = tag
		}
		return Parsed[map[string]string]{Value: identity, Fallback: true, Err: err}, nil
	}

	return Parsed[map[string]string]{Value: mapping}, nil
}

func decodeReply(response string, dst any) error {
	if err := json.Unmarshal([]byte(strings.TrimSpace(response)), dst); err == nil {
		return nil
	}

	raw, err := llm.ExtractJSON(response)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("parse extracted JSON: %w", err)
	}
	return nil
}

// Process enriches the raw posts at rawPath. When outPath is non-empty the
// processed posts are written there as indented JSON. Fields of the raw
// records other than the extracted metadata are kept as they are.
func (e *Enricher) Process(ctx context.Context, rawPath, outPath string) ([]map[string]any, error) {
	data, err := os.ReadFile(rawPath)
	if err != nil {
		return nil, fmt.Errorf("read raw posts: %w", err)
	}

	var posts []map[string]any
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("parse raw posts: %w", err)
	}

	slog.Info("enriching posts", "count", len(posts))

	tagLists := make([][]string, len(posts))
	for i, post := range posts {
		text, _ := post["text"].(string)

		meta, err := e.ExtractMetadata(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("extract metadata for post %d: %w", i, err)
		}

		post["line_count"] = meta.Value.LineCount
		post["language"] = meta.Value.Language
		tagLists[i] = meta.Value.Tags

		slog.Debug("extracted metadata",
			"post", i,
			"lines", meta.Value.LineCount,
			"language", meta.Value.Language,
			"fallback", meta.Fallback,
		)
	}

	unique := uniqueTags(tagLists)
	if len(unique) > 0 {
		unified, err := e.UnifyTags(ctx, unique)
		if err != nil {
			return nil, fmt.Errorf("unify tags: %w", err)
		}
		for i := range tagLists {
			tagLists[i] = applyMapping(tagLists[i], unified.Value)
		}
	}

	for i, post := range posts {
		post["tags"] = tagLists[i]
	}

	if outPath != "" {
		if err := writeJSON(outPath, posts); err != nil {
			return nil, err
		}
		slog.Info("wrote processed posts", "path", outPath, "count", len(posts))
	}

	return posts, nil
}

func uniqueTags(lists [][]string) []string {
	var out []string
	for _, tags := range lists {
		for _, tag := range tags {
			if !slices.Contains(out, tag) {
				out = append(out, tag)
			}
		}
	}
	slices.Sort(out)
	return out
}

// applyMapping rewrites tags through mapping, leaving unmapped tags alone
// and collapsing duplicates.
func applyMapping(tags []string, mapping map[string]string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if unified, ok := mapping[tag]; ok && unified != "" {
			tag = unified
		}
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal processed posts: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write processed posts: %w", err)
	}
	return nil
}
