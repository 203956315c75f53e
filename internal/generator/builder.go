// Package generator assembles few-shot prompts from the example store and
// hands them to a text-generation backend.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abdulachik/postgen/internal/fewshot"
	"github.com/abdulachik/postgen/internal/llm"
)

// MaxExamples is the number of matching posts embedded in a prompt.
const MaxExamples = 2

// ExampleSource answers few-shot filter queries.
type ExampleSource interface {
	FilterPosts(length fewshot.Length, language fewshot.Language, tag string) []fewshot.Post
}

// MapLengthToDescription describes a length category as a line range.
func MapLengthToDescription(length fewshot.Length) string {
	switch length {
	case fewshot.Short:
		return "1 to 5 lines"
	case fewshot.Medium:
		return "6 to 10 lines"
	case fewshot.Long:
		return "11 to 15 lines"
	default:
		return "Unknown length"
	}
}

// Builder builds generation prompts.
type Builder struct {
	examples ExampleSource
}

// NewBuilder creates a Builder backed by examples.
func NewBuilder(examples ExampleSource) *Builder {
	return &Builder{examples: examples}
}

// Prompt is an assembled instruction plus the number of examples it embeds.
type Prompt struct {
	Text     string
	Examples int
}

// BuildPrompt returns the instruction text for the request. Up to
// MaxExamples matching posts are appended as a style guide; with no matches
// the style guide is left out.
func (b *Builder) BuildPrompt(length fewshot.Length, language fewshot.Language, tag string) string {
	return b.Build(length, language, tag).Text
}

// Build is BuildPrompt that also reports how many examples were used.
func (b *Builder) Build(length fewshot.Length, language fewshot.Language, tag string) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, PostPrompt, tag, MapLengthToDescription(length), language)

	matches := b.examples.FilterPosts(length, language, tag)
	if len(matches) > MaxExamples {
		matches = matches[:MaxExamples]
	}

	if len(matches) > 0 {
		sb.WriteString(StyleGuideHeading)
		for i, post := range matches {
			fmt.Fprintf(&sb, ExampleBlock, i+1, post.Text)
		}
	}

	slog.Debug("built prompt",
		"tag", tag,
		"length", length,
		"language", language,
		"examples", len(matches),
	)

	return Prompt{Text: sb.String(), Examples: len(matches)}
}

// Generator produces posts by sending built prompts to an LLM.
type Generator struct {
	builder *Builder
	client  llm.Client
}

// New creates a Generator.
func New(builder *Builder, client llm.Client) *Generator {
	return &Generator{builder: builder, client: client}
}

// Builder returns the prompt builder used by the generator.
func (g *Generator) Builder() *Builder {
	return g.builder
}

// Result is a generated post together with the prompt that produced it.
type Result struct {
	Post   string
	Prompt Prompt
}

// GeneratePost builds the prompt, makes one completion call and returns the
// trimmed reply. Errors from the client are returned as is.
func (g *Generator) GeneratePost(ctx context.Context, length fewshot.Length, language fewshot.Language, tag string) (string, error) {
	res, err := g.Generate(ctx, length, language, tag)
	if err != nil {
		return "", err
	}
	return res.Post, nil
}

// Generate is GeneratePost that also returns the prompt.
func (g *Generator) Generate(ctx context.Context, length fewshot.Length, language fewshot.Language, tag string) (*Result, error) {
	prompt := g.builder.Build(length, language, tag)

	out, err := g.client.Complete(ctx, prompt.Text)
	if err != nil {
		return nil, err
	}

	return &Result{Post: strings.TrimSpace(out), Prompt: prompt}, nil
}
