// Package llm wraps the Gemini API behind small interfaces so the chat
// pipeline can be tested with fakes.
package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Completer generates grounded answers from a prompt.
type Completer interface {
	// Complete returns the full response text.
	Complete(ctx context.Context, system, prompt string) (string, error)
	// CompleteStream invokes fn for each response chunk as it arrives.
	// A non-nil error from fn aborts the stream.
	CompleteStream(ctx context.Context, system, prompt string, fn func(chunk string) error) error
}

// Encoder converts text into embedding vectors for similarity search.
type Encoder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options configures the Gemini client.
type Options struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	MaxTokens      int
	Temperature    float64
}

// Client implements Completer and Encoder against the Gemini API.
type Client struct {
	genai *genai.Client
	opts  Options
}

// NewClient creates a Gemini-backed client. The API key comes from Google
// AI Studio; without one the constructor fails and the caller should run
// in deterministic-only mode.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: opts.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}
	return &Client{genai: gc, opts: opts}, nil
}

func (c *Client) generateConfig(system string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.opts.Temperature)),
		MaxOutputTokens: int32(c.opts.MaxTokens),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return cfg
}

// Complete returns the full response for the prompt.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	content := genai.NewContentFromText(prompt, genai.RoleUser)
	resp, err := c.genai.Models.GenerateContent(ctx, c.opts.Model,
		[]*genai.Content{content}, c.generateConfig(system))
	if err != nil {
		return "", fmt.Errorf("llm: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("llm: no response candidates")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			out.WriteString(part.Text)
		}
	}
	return out.String(), nil
}

// CompleteStream streams response chunks to fn in arrival order.
func (c *Client) CompleteStream(ctx context.Context, system, prompt string, fn func(chunk string) error) error {
	content := genai.NewContentFromText(prompt, genai.RoleUser)
	stream := c.genai.Models.GenerateContentStream(ctx, c.opts.Model,
		[]*genai.Content{content}, c.generateConfig(system))

	for resp, err := range stream {
		if err != nil {
			return fmt.Errorf("llm: stream: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text == "" {
				continue
			}
			if err := fn(part.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

// Embed returns the embedding vector for the text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	resp, err := c.genai.Models.EmbedContent(ctx, c.opts.EmbeddingModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("llm: embed content: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("llm: empty embedding")
	}
	return resp.Embeddings[0].Values, nil
}
