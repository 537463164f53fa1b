// ABOUTME: This file implements the synthesis client that turns fetched content into a lesson
// ABOUTME: Consumes the orchestrator's normalized list plus a word budget and field label
package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/andrewvu270/MindForge-sub000/models"
	"github.com/andrewvu270/MindForge-sub000/retry"
)

// Request carries everything the generation step needs.
type Request struct {
	Field      string
	Topic      string
	WordBudget int
	Items      []models.NormalizedContent
}

// Lesson is the structured synthesis output.
type Lesson struct {
	Title              string   `json:"title"`
	Content            string   `json:"content"`
	KeyConcepts        []string `json:"key_concepts"`
	LearningObjectives []string `json:"learning_objectives"`
}

// Client generates lessons through an ordered list of backends, each wrapped
// by the shared retry executor.
type Client struct {
	backends []Backend
	retrier  *retry.Retrier
	timeout  time.Duration
	logger   *slog.Logger
}

func NewClient(backends []Backend, retrier *retry.Retrier, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		backends: backends,
		retrier:  retrier,
		timeout:  timeout,
		logger:   logger,
	}
}

// Synthesize produces a lesson from the fetched content. The contract with
// the orchestrator guarantees at least one input item whenever a fallback
// tier succeeded, so an empty list is a programming error worth surfacing.
func (c *Client) Synthesize(ctx context.Context, req Request) (*Lesson, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("synthesize called with no input items for topic %q", req.Topic)
	}
	if req.WordBudget <= 0 {
		req.WordBudget = 500
	}

	prompt := buildPrompt(req)

	raw, err := tryInOrder(ctx, c.backends, c.retrier, c.timeout, prompt, c.logger)
	if err != nil {
		return nil, err
	}

	return parseLesson(raw, req), nil
}

const promptTemplate = `You are an expert educator writing a lesson about %q in the field of %s.

Use ONLY the source material below. Write at most %d words.

SOURCE MATERIAL:
%s

Respond with a single JSON object, no preamble, with exactly these keys:
"title" (string), "content" (string), "key_concepts" (array of strings),
"learning_objectives" (array of strings).`

func buildPrompt(req Request) string {
	var sources strings.Builder
	for i, item := range req.Items {
		fmt.Fprintf(&sources, "[%d] %s — %s (%s)\n%s\n\n", i+1, item.Source, item.Title, item.SourceType, item.Content)
	}

	return fmt.Sprintf(promptTemplate, req.Topic, req.Field, req.WordBudget, sources.String())
}

// parseLesson decodes the model's JSON output, tolerating fenced code blocks.
// Output that is not valid JSON degrades to a plain-text lesson rather than
// failing the pipeline.
func parseLesson(raw string, req Request) *Lesson {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var lesson Lesson
	if err := json.Unmarshal([]byte(cleaned), &lesson); err == nil && lesson.Content != "" {
		if lesson.Title == "" {
			lesson.Title = req.Topic
		}
		return &lesson
	}

	return &Lesson{
		Title:   req.Topic,
		Content: cleaned,
	}
}
