package fewshot

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePosts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCategorizeLength(t *testing.T) {
	cases := []struct {
		lines int
		want  Length
	}{
		{0, Short},
		{4, Short},
		{5, Medium},
		{10, Medium},
		{11, Long},
		{40, Long},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CategorizeLength(tc.lines), "line_count=%d", tc.lines)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads testdata", func(t *testing.T) {
		store, err := Load("testdata/posts.json")
		require.NoError(t, err)
		assert.Equal(t, 4, store.Len())

		posts := store.Posts()
		assert.Equal(t, Short, posts[0].Length())
		assert.Equal(t, Medium, posts[1].Length())
		assert.Equal(t, Long, posts[2].Length())
		assert.Contains(t, posts[0].Extra, "engagement")
	})

	t.Run("derived length matches line count", func(t *testing.T) {
		store, err := Load("testdata/posts.json")
		require.NoError(t, err)

		for i, p := range store.Posts() {
			assert.Equal(t, CategorizeLength(p.LineCount), store.lengths[i])
			assert.Equal(t, store.lengths[i], p.Length())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)

		var nf *NotFoundError
		assert.True(t, errors.As(err, &nf))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
		assert.Contains(t, err.Error(), "nope.json")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := Load(writePosts(t, `[{"text": "unclosed`))
		require.Error(t, err)

		var le *LoadError
		assert.True(t, errors.As(err, &le))
		assert.NotNil(t, errors.Unwrap(err))
	})

	t.Run("top level object", func(t *testing.T) {
		_, err := Load(writePosts(t, `{"text": "A"}`))
		var le *LoadError
		assert.True(t, errors.As(err, &le))
	})

	t.Run("top level null", func(t *testing.T) {
		_, err := Load(writePosts(t, `null`))
		var le *LoadError
		assert.True(t, errors.As(err, &le))
	})

	t.Run("missing line count", func(t *testing.T) {
		_, err := Load(writePosts(t, `[{"text": "A", "language": "English"}]`))
		var le *LoadError
		require.True(t, errors.As(err, &le))
		assert.Contains(t, err.Error(), "line_count")
	})

	t.Run("fractional line count", func(t *testing.T) {
		_, err := Load(writePosts(t, `[{"text": "A", "language": "English", "line_count": 2.5}]`))
		var le *LoadError
		assert.True(t, errors.As(err, &le))
	})

	t.Run("whole number in float form", func(t *testing.T) {
		store, err := Load(writePosts(t, `[{"text": "A", "language": "English", "line_count": 5.0, "tags": ["T"]}]`))
		require.NoError(t, err)

		posts := store.Posts()
		require.Len(t, posts, 1)
		assert.Equal(t, 5, posts[0].LineCount)
		assert.Equal(t, Medium, posts[0].Length())
		assert.Len(t, store.FilterPosts(Medium, English, "T"), 1)
	})

	t.Run("negative line count", func(t *testing.T) {
		_, err := Load(writePosts(t, `[{"text": "A", "language": "English", "line_count": -1}]`))
		var le *LoadError
		assert.True(t, errors.As(err, &le))
	})

	t.Run("empty array", func(t *testing.T) {
		store, err := Load(writePosts(t, `[]`))
		require.NoError(t, err)
		assert.Equal(t, 0, store.Len())
		assert.Empty(t, store.GetTags())
	})
}

func TestTagNormalization(t *testing.T) {
	path := writePosts(t, `[
		{"text": "A", "language": "English", "line_count": 1, "tags": "Motivation"},
		{"text": "B", "language": "English", "line_count": 1},
		{"text": "C", "language": "English", "line_count": 1, "tags": null},
		{"text": "D", "language": "English", "line_count": 1, "tags": ["X", 3, "Y", "X"]},
		{"text": "E", "language": "English", "line_count": 1, "tags": {"a": 1}}
	]`)

	store, err := Load(path)
	require.NoError(t, err)

	posts := store.Posts()
	assert.Equal(t, []string{}, posts[0].Tags)
	assert.Equal(t, []string{}, posts[1].Tags)
	assert.Equal(t, []string{}, posts[2].Tags)
	assert.Equal(t, []string{"X", "Y"}, posts[3].Tags)
	assert.Equal(t, []string{}, posts[4].Tags)
	for _, p := range posts {
		assert.NotNil(t, p.Tags)
	}
}

func TestStore_GetTags(t *testing.T) {
	t.Run("sorted and distinct", func(t *testing.T) {
		store := New([]Post{
			{Text: "A", Tags: []string{"Zeta", "Alpha"}, Language: English, LineCount: 1},
			{Text: "B", Tags: []string{"Alpha", "Mid", "Mid"}, Language: English, LineCount: 1},
		})
		assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, store.GetTags())
	})

	t.Run("from file", func(t *testing.T) {
		store, err := Load("testdata/posts.json")
		require.NoError(t, err)
		assert.Equal(t, []string{"Job Search", "Mental Health", "Motivation"}, store.GetTags())
	})

	t.Run("returns a copy", func(t *testing.T) {
		store := New([]Post{{Text: "A", Tags: []string{"One"}, Language: English}})
		tags := store.GetTags()
		tags[0] = "Changed"
		assert.Equal(t, []string{"One"}, store.GetTags())
	})
}

func TestStore_FilterPosts(t *testing.T) {
	t.Run("end to end example", func(t *testing.T) {
		store := New([]Post{
			{Text: "A", Tags: []string{"Motivation"}, Language: English, LineCount: 3},
			{Text: "B", Tags: []string{"Motivation"}, Language: English, LineCount: 7},
		})

		short := store.FilterPosts(Short, English, "Motivation")
		require.Len(t, short, 1)
		assert.Equal(t, "A", short[0].Text)

		long := store.FilterPosts(Long, English, "Motivation")
		assert.NotNil(t, long)
		assert.Empty(t, long)
	})

	t.Run("unknown tag is empty", func(t *testing.T) {
		store, err := Load("testdata/posts.json")
		require.NoError(t, err)

		posts := store.FilterPosts(Short, English, "Quantum Knitting")
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})

	t.Run("preserves load order", func(t *testing.T) {
		store := New([]Post{
			{Text: "first", Tags: []string{"T"}, Language: English, LineCount: 6},
			{Text: "skip", Tags: []string{"T"}, Language: Hinglish, LineCount: 6},
			{Text: "second", Tags: []string{"T"}, Language: English, LineCount: 9},
			{Text: "third", Tags: []string{"T", "U"}, Language: English, LineCount: 5},
		})

		posts := store.FilterPosts(Medium, English, "T")
		require.Len(t, posts, 3)
		assert.Equal(t, "first", posts[0].Text)
		assert.Equal(t, "second", posts[1].Text)
		assert.Equal(t, "third", posts[2].Text)
	})

	t.Run("exact case sensitive match", func(t *testing.T) {
		store := New([]Post{
			{Text: "A", Tags: []string{"Motivation"}, Language: English, LineCount: 1},
		})
		assert.Empty(t, store.FilterPosts(Short, English, "motivation"))
		assert.Empty(t, store.FilterPosts(Short, Language("english"), "Motivation"))
		assert.Empty(t, store.FilterPosts(Short, English, "Motiv"))
	})

	t.Run("hinglish medium job search", func(t *testing.T) {
		store, err := Load("testdata/posts.json")
		require.NoError(t, err)

		posts := store.FilterPosts(Medium, Hinglish, "Job Search")
		require.Len(t, posts, 1)
		assert.Contains(t, posts[0].Text, "Job dhoondhna")
	})
}

func TestParseLineCount(t *testing.T) {
	cases := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"7", 7, false},
		{"5.0", 5, false},
		{"1e1", 10, false},
		{"2.5", 0, true},
		{"-1", 0, true},
		{"-3.0", 0, true},
		{`"4"`, 0, true},
		{"1e300", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseLineCount([]byte(tc.raw))
		if tc.wantErr {
			assert.Error(t, err, "raw=%s", tc.raw)
			continue
		}
		require.NoError(t, err, "raw=%s", tc.raw)
		assert.Equal(t, tc.want, got, "raw=%s", tc.raw)
	}
}

func TestStore_ResultsAreDetached(t *testing.T) {
	newStore := func() *Store {
		return New([]Post{{
			Text:      "A",
			Tags:      []string{"Motivation"},
			Language:  English,
			LineCount: 3,
			Extra:     map[string]json.RawMessage{"engagement": json.RawMessage("10")},
		}})
	}

	t.Run("editing filtered posts", func(t *testing.T) {
		store := newStore()

		got := store.FilterPosts(Short, English, "Motivation")
		require.Len(t, got, 1)
		got[0].Tags[0] = "Hacked"
		got[0].Extra["engagement"] = json.RawMessage("0")

		assert.Len(t, store.FilterPosts(Short, English, "Motivation"), 1)
		assert.Empty(t, store.FilterPosts(Short, English, "Hacked"))
		assert.Equal(t, []string{"Motivation"}, store.GetTags())
		assert.Equal(t, json.RawMessage("10"), store.Posts()[0].Extra["engagement"])
	})

	t.Run("editing all posts", func(t *testing.T) {
		store := newStore()

		posts := store.Posts()
		posts[0].Tags[0] = "Hacked"
		posts[0].Text = "changed"

		again := store.FilterPosts(Short, English, "Motivation")
		require.Len(t, again, 1)
		assert.Equal(t, "A", again[0].Text)
		assert.Equal(t, []string{"Motivation"}, again[0].Tags)
	})
}

func TestParseLengthAndLanguage(t *testing.T) {
	l, err := ParseLength("Medium")
	require.NoError(t, err)
	assert.Equal(t, Medium, l)

	_, err = ParseLength("medium")
	assert.Error(t, err)

	lang, err := ParseLanguage("Hinglish")
	require.NoError(t, err)
	assert.Equal(t, Hinglish, lang)

	_, err = ParseLanguage("Hindi")
	assert.Error(t, err)
}

func TestShippedCorpus(t *testing.T) {
	store, err := Load(filepath.Join("..", "..", "data", "processed_posts.json"))
	require.NoError(t, err)
	require.Positive(t, store.Len())

	raw, err := os.ReadFile(filepath.Join("..", "..", "data", "raw_posts.json"))
	require.NoError(t, err)
	var rawPosts []struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(raw, &rawPosts))
	require.Len(t, rawPosts, store.Len())

	for i, p := range store.Posts() {
		assert.Equal(t, rawPosts[i].Text, p.Text, "post %d", i)
		assert.Equal(t, strings.Count(p.Text, "\n")+1, p.LineCount, "post %d", i)
	}
}
