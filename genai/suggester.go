// Package genai suggests commit messages with the Gemini API.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/fwojciec/stagehand"
)

// Compile-time interface verification.
var _ stagehand.Suggester = (*Suggester)(nil)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const promptTemplate = `Write a commit message subject for the following patch.
Reply with a single line of at most 72 characters, imperative mood, no
trailing period, and nothing else.

%s`

// Suggester proposes commit subjects for patches using the Gemini API.
type Suggester struct {
	client *genai.Client
	model  string
}

// NewSuggester creates a suggester using the given model, or DefaultModel
// when empty. API credentials come from the environment (GEMINI_API_KEY).
func NewSuggester(ctx context.Context, model string) (*Suggester, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Suggester{client: client, model: model}, nil
}

// Suggest returns a single-line commit subject for the patch text.
func (s *Suggester) Suggest(ctx context.Context, patch string) (string, error) {
	if strings.TrimSpace(patch) == "" {
		return "", errors.New("empty patch")
	}
	prompt := fmt.Sprintf(promptTemplate, patch)
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	subject := firstLine(resp.Text())
	if subject == "" {
		return "", errors.New("model returned no text")
	}
	return subject, nil
}

// firstLine trims the response to its first non-empty line; models tend to
// ignore single-line instructions.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
