// ABOUTME: This file implements the Reddit source adapter
// ABOUTME: Uses the public JSON listing endpoint; Reddit rejects empty user agents
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/andrewvu270/MindForge-sub000/config"
	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/models"
)

const redditName = "reddit"

type RedditAdapter struct {
	client *Client
	cfg    config.AdapterConfig
	logger *slog.Logger
}

func NewRedditAdapter(client *Client, cfg config.AdapterConfig, logger *slog.Logger) *RedditAdapter {
	return &RedditAdapter{client: client, cfg: cfg, logger: logger}
}

func (a *RedditAdapter) Name() string { return redditName }

func (a *RedditAdapter) Descriptor() Descriptor {
	return Descriptor{
		Name:       redditName,
		SourceType: models.SourceTypeDiscussion,
		DefaultTTL: a.cfg.TTL,
		Timeout:    a.cfg.Timeout,
		MaxRetries: a.cfg.MaxRetries,
	}
}

func (a *RedditAdapter) Fetch(ctx context.Context, topic string, limit int) ([]RawItem, error) {
	query := url.Values{
		"q":     {topic},
		"limit": {strconv.Itoa(limit)},
		"sort":  {"relevance"},
		"t":     {"year"},
	}

	var response struct {
		Data struct {
			Children []struct {
				Data map[string]any `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}

	if err := a.client.GetJSON(ctx, a.cfg.BaseURL+"/search.json?"+query.Encode(), nil, &response); err != nil {
		return nil, err
	}

	items := make([]RawItem, 0, len(response.Data.Children))
	for _, child := range response.Data.Children {
		items = append(items, RawItem(child.Data))
	}

	return items, nil
}

func (a *RedditAdapter) Normalize(item RawItem) (models.NormalizedContent, error) {
	if item == nil {
		return models.NormalizedContent{}, domain.ErrMalformedItem
	}

	title := stringVal(item, "title")
	if title == "" {
		return models.NormalizedContent{}, fmt.Errorf("%w: post has no title", domain.ErrMalformedItem)
	}

	link := stringVal(item, "url")
	if permalink := stringVal(item, "permalink"); permalink != "" {
		link = "https://www.reddit.com" + permalink
	}

	metadata := map[string]string{}
	if subreddit := stringVal(item, "subreddit"); subreddit != "" {
		metadata["subreddit"] = subreddit
	}
	if score, ok := floatVal(item, "score"); ok {
		metadata["score"] = strconv.Itoa(int(score))
	}
	if comments, ok := floatVal(item, "num_comments"); ok {
		metadata["num_comments"] = strconv.Itoa(int(comments))
	}

	return models.NormalizedContent{
		Source:     redditName,
		SourceType: models.SourceTypeDiscussion,
		Title:      title,
		Content:    truncate(stringVal(item, "selftext"), 4000),
		URL:        link,
		Metadata:   metadata,
	}, nil
}
