// ABOUTME: This file implements the Hacker News source adapter
// ABOUTME: Uses the Algolia search API, no credentials required
package adapter

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/andrewvu270/MindForge-sub000/config"
	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/models"
	"github.com/andrewvu270/MindForge-sub000/utils/htmltext"
)

const hackerNewsName = "hackernews"

type HackerNewsAdapter struct {
	client *Client
	cfg    config.AdapterConfig
	logger *slog.Logger
}

func NewHackerNewsAdapter(client *Client, cfg config.AdapterConfig, logger *slog.Logger) *HackerNewsAdapter {
	return &HackerNewsAdapter{client: client, cfg: cfg, logger: logger}
}

func (a *HackerNewsAdapter) Name() string { return hackerNewsName }

func (a *HackerNewsAdapter) Descriptor() Descriptor {
	return Descriptor{
		Name:       hackerNewsName,
		SourceType: models.SourceTypeDiscussion,
		DefaultTTL: a.cfg.TTL,
		Timeout:    a.cfg.Timeout,
		MaxRetries: a.cfg.MaxRetries,
	}
}

func (a *HackerNewsAdapter) Fetch(ctx context.Context, topic string, limit int) ([]RawItem, error) {
	query := url.Values{
		"query":       {topic},
		"tags":        {"story"},
		"hitsPerPage": {strconv.Itoa(limit)},
	}

	var response struct {
		Hits []map[string]any `json:"hits"`
	}

	if err := a.client.GetJSON(ctx, a.cfg.BaseURL+"/search?"+query.Encode(), nil, &response); err != nil {
		return nil, err
	}

	items := make([]RawItem, 0, len(response.Hits))
	for _, hit := range response.Hits {
		items = append(items, RawItem(hit))
	}

	return items, nil
}

func (a *HackerNewsAdapter) Normalize(item RawItem) (models.NormalizedContent, error) {
	if item == nil {
		return models.NormalizedContent{}, domain.ErrMalformedItem
	}

	objectID := stringVal(item, "objectID")
	if objectID == "" {
		return models.NormalizedContent{}, domain.ErrMalformedItem
	}

	// Self posts carry their text in story_text; link posts only have a URL.
	body := htmltext.ExtractText(stringVal(item, "story_text"))

	link := stringVal(item, "url")
	discussionURL := "https://news.ycombinator.com/item?id=" + objectID
	if link == "" {
		link = discussionURL
	}

	metadata := map[string]string{
		"discussion_url": discussionURL,
	}
	if points, ok := floatVal(item, "points"); ok {
		metadata["points"] = strconv.Itoa(int(points))
	}
	if comments, ok := floatVal(item, "num_comments"); ok {
		metadata["num_comments"] = strconv.Itoa(int(comments))
	}
	if author := stringVal(item, "author"); author != "" {
		metadata["author"] = author
	}

	return models.NormalizedContent{
		Source:     hackerNewsName,
		SourceType: models.SourceTypeDiscussion,
		Title:      stringVal(item, "title"),
		Content:    truncate(body, 4000),
		URL:        link,
		Metadata:   metadata,
	}, nil
}
