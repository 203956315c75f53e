package fewshot

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"slices"
)

// Store is an immutable in-memory table of example posts.
type Store struct {
	posts   []Post
	lengths []Length // lengths[i] is the category of posts[i]
	tags    []string // sorted, distinct
}

// Load reads a JSON array of post records from path.
// A missing file yields *NotFoundError, anything else *LoadError.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, &LoadError{Path: path, Err: err}
	}

	posts, err := decodePosts(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	store := New(posts)
	slog.Debug("loaded example posts", "path", path, "posts", len(store.posts), "tags", len(store.tags))
	return store, nil
}

func decodePosts(data []byte) ([]Post, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		return nil, errors.New("top-level value is not an array")
	}

	posts := make([]Post, 0, len(records))
	for i, raw := range records {
		p, err := decodePost(i, raw)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// New builds a Store from already decoded posts. Tags are normalized to
// duplicate-free lists and length categories are derived up front.
func New(posts []Post) *Store {
	s := &Store{
		posts:   make([]Post, len(posts)),
		lengths: make([]Length, len(posts)),
	}

	seen := make(map[string]struct{})
	for i, p := range posts {
		p.Tags = dedupe(p.Tags)
		s.posts[i] = p
		s.lengths[i] = CategorizeLength(p.LineCount)
		for _, tag := range p.Tags {
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				s.tags = append(s.tags, tag)
			}
		}
	}
	slices.Sort(s.tags)

	return s
}

func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}

// GetTags returns every distinct tag across the store in ascending order.
func (s *Store) GetTags() []string {
	return slices.Clone(s.tags)
}

// FilterPosts returns, in load order, the posts carrying tag whose language
// and length category match exactly. No match yields an empty slice.
func (s *Store) FilterPosts(length Length, language Language, tag string) []Post {
	matches := []Post{}
	for i, p := range s.posts {
		if s.lengths[i] == length && p.Language == language && p.HasTag(tag) {
			matches = append(matches, clonePost(p))
		}
	}
	return matches
}

// Posts returns all posts in load order.
func (s *Store) Posts() []Post {
	posts := make([]Post, len(s.posts))
	for i, p := range s.posts {
		posts[i] = clonePost(p)
	}
	return posts
}

// clonePost copies the slice and map fields so callers cannot reach the
// store's rows.
func clonePost(p Post) Post {
	p.Tags = slices.Clone(p.Tags)
	p.Extra = maps.Clone(p.Extra)
	return p
}

// Len returns the number of posts in the store.
func (s *Store) Len() int {
	return len(s.posts)
}
