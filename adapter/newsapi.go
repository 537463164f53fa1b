// ABOUTME: This file implements the NewsAPI source adapter
// ABOUTME: Requires an API key and fails fast at construction without one
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/andrewvu270/MindForge-sub000/config"
	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/models"
)

const newsAPIName = "newsapi"

type NewsAPIAdapter struct {
	client *Client
	cfg    config.AdapterConfig
	logger *slog.Logger
}

func NewNewsAPIAdapter(client *Client, cfg config.AdapterConfig, logger *slog.Logger) (*NewsAPIAdapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("newsapi adapter: %w (set NEWSAPI_API_KEY)", domain.ErrMissingCredentials)
	}
	return &NewsAPIAdapter{client: client, cfg: cfg, logger: logger}, nil
}

func (a *NewsAPIAdapter) Name() string { return newsAPIName }

func (a *NewsAPIAdapter) Descriptor() Descriptor {
	return Descriptor{
		Name:       newsAPIName,
		SourceType: models.SourceTypeNews,
		DefaultTTL: a.cfg.TTL,
		Timeout:    a.cfg.Timeout,
		MaxRetries: a.cfg.MaxRetries,
	}
}

func (a *NewsAPIAdapter) Fetch(ctx context.Context, topic string, limit int) ([]RawItem, error) {
	query := url.Values{
		"q":        {topic},
		"pageSize": {strconv.Itoa(limit)},
		"language": {"en"},
		"sortBy":   {"relevancy"},
	}

	var response struct {
		Status   string           `json:"status"`
		Articles []map[string]any `json:"articles"`
	}

	header := http.Header{"X-Api-Key": {a.cfg.APIKey}}
	if err := a.client.GetJSON(ctx, a.cfg.BaseURL+"/everything?"+query.Encode(), header, &response); err != nil {
		return nil, err
	}

	if response.Status != "ok" {
		return nil, fmt.Errorf("newsapi returned status %q", response.Status)
	}

	items := make([]RawItem, 0, len(response.Articles))
	for _, article := range response.Articles {
		items = append(items, RawItem(article))
	}

	return items, nil
}

func (a *NewsAPIAdapter) Normalize(item RawItem) (models.NormalizedContent, error) {
	if item == nil {
		return models.NormalizedContent{}, domain.ErrMalformedItem
	}

	title := stringVal(item, "title")
	body := stringVal(item, "content")
	if body == "" {
		body = stringVal(item, "description")
	}
	if title == "" && body == "" {
		return models.NormalizedContent{}, fmt.Errorf("%w: article has neither title nor body", domain.ErrMalformedItem)
	}

	metadata := map[string]string{}
	if source := mapVal(item, "source"); source != nil {
		if name := stringVal(source, "name"); name != "" {
			metadata["outlet"] = name
		}
	}
	if published := stringVal(item, "publishedAt"); published != "" {
		metadata["published"] = published
	}
	if author := stringVal(item, "author"); author != "" {
		metadata["author"] = author
	}

	return models.NormalizedContent{
		Source:     newsAPIName,
		SourceType: models.SourceTypeNews,
		Title:      title,
		Content:    truncate(body, 4000),
		URL:        stringVal(item, "url"),
		Metadata:   metadata,
	}, nil
}
