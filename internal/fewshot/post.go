// Package fewshot loads annotated example posts and answers the filter
// queries used to pick few-shot examples for generation.
package fewshot

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// Length is the coarse size bucket of a post.
type Length string

const (
	Short  Length = "Short"
	Medium Length = "Medium"
	Long   Length = "Long"
)

// Language is the language a post is written in.
type Language string

const (
	English  Language = "English"
	Hinglish Language = "Hinglish"
)

// Lengths returns the selectable length categories in display order.
func Lengths() []Length {
	return []Length{Short, Medium, Long}
}

// Languages returns the selectable languages in display order.
func Languages() []Language {
	return []Language{English, Hinglish}
}

// ParseLength matches s exactly against the known length categories.
func ParseLength(s string) (Length, error) {
	for _, l := range Lengths() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("invalid length %q (must be Short, Medium or Long)", s)
}

// ParseLanguage matches s exactly against the known languages.
func ParseLanguage(s string) (Language, error) {
	for _, l := range Languages() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("invalid language %q (must be English or Hinglish)", s)
}

// CategorizeLength buckets a line count: under 5 is Short, 5 through 10 is
// Medium, anything above is Long.
func CategorizeLength(lineCount int) Length {
	switch {
	case lineCount < 5:
		return Short
	case lineCount <= 10:
		return Medium
	default:
		return Long
	}
}

// Post is one annotated example post.
type Post struct {
	Text      string   `json:"text"`
	Tags      []string `json:"tags"`
	Language  Language `json:"language"`
	LineCount int      `json:"line_count"`

	// Extra holds fields of the source record that are not interpreted.
	Extra map[string]json.RawMessage `json:"-"`
}

// Length returns the post's length category, derived from its line count.
func (p Post) Length() Length {
	return CategorizeLength(p.LineCount)
}

// HasTag reports whether tag is one of the post's tags (exact match).
func (p Post) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// normalizeTags turns a raw tags value into a duplicate-free list. Anything
// other than a JSON array yields an empty list; non-string elements are dropped.
func normalizeTags(raw json.RawMessage) []string {
	tags := []string{}
	if len(raw) == 0 {
		return tags
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return tags
	}

	for _, item := range items {
		var tag string
		if err := json.Unmarshal(item, &tag); err != nil {
			continue
		}
		if !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}

// decodePost builds a Post from one raw source record.
func decodePost(index int, raw json.RawMessage) (Post, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Post{}, fmt.Errorf("post %d: not a JSON object", index)
	}

	var p Post
	if err := decodeRequired(fields, "text", &p.Text); err != nil {
		return Post{}, fmt.Errorf("post %d: %w", index, err)
	}
	if err := decodeRequired(fields, "language", &p.Language); err != nil {
		return Post{}, fmt.Errorf("post %d: %w", index, err)
	}
	var lineCount json.RawMessage
	if err := decodeRequired(fields, "line_count", &lineCount); err != nil {
		return Post{}, fmt.Errorf("post %d: %w", index, err)
	}
	n, err := ParseLineCount(lineCount)
	if err != nil {
		return Post{}, fmt.Errorf("post %d: field \"line_count\": %w", index, err)
	}
	p.LineCount = n
	p.Tags = normalizeTags(fields["tags"])

	for key, value := range fields {
		switch key {
		case "text", "tags", "language", "line_count":
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		p.Extra[key] = value
	}

	return p, nil
}

// ParseLineCount decodes a JSON number as a line count. Whole numbers written
// in float form (5.0) are accepted; fractions and negatives are not.
func ParseLineCount(raw json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	if math.Trunc(f) != f || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a whole number: %s", raw)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative line count: %s", raw)
	}
	if f > math.MaxInt32 {
		return 0, fmt.Errorf("line count out of range: %s", raw)
	}
	return int(f), nil
}

func decodeRequired(fields map[string]json.RawMessage, key string, dst any) error {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return fmt.Errorf("missing field %q", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}
