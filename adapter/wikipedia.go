// ABOUTME: This file implements the Wikipedia source adapter
// ABOUTME: Always-available broad-coverage baseline used by every fallback tier
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

const wikipediaName = "wikipedia"

type WikipediaAdapter struct {
	client *Client
	cfg    config.AdapterConfig
	logger *slog.Logger
}

func NewWikipediaAdapter(client *Client, cfg config.AdapterConfig, logger *slog.Logger) *WikipediaAdapter {
	return &WikipediaAdapter{client: client, cfg: cfg, logger: logger}
}

func (a *WikipediaAdapter) Name() string { return wikipediaName }

func (a *WikipediaAdapter) Descriptor() Descriptor {
	return Descriptor{
		Name:       wikipediaName,
		SourceType: models.SourceTypeText,
		DefaultTTL: a.cfg.TTL,
		Timeout:    a.cfg.Timeout,
		MaxRetries: a.cfg.MaxRetries,
	}
}

// Fetch runs one generator=search query that returns intro extracts in plain
// text, so each topic costs a single round trip.
func (a *WikipediaAdapter) Fetch(ctx context.Context, topic string, limit int) ([]RawItem, error) {
	query := url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"generator":     {"search"},
		"gsrsearch":     {topic},
		"gsrlimit":      {strconv.Itoa(limit)},
		"prop":          {"extracts|info"},
		"exintro":       {"1"},
		"explaintext":   {"1"},
		"exlimit":       {"max"},
		"inprop":        {"url"},
		"redirects":     {"1"},
		"formatversion": {"2"},
	}

	var response struct {
		Query struct {
			Pages []map[string]any `json:"pages"`
		} `json:"query"`
	}

	if err := a.client.GetJSON(ctx, a.cfg.BaseURL+"?"+query.Encode(), nil, &response); err != nil {
		return nil, err
	}

	items := make([]RawItem, 0, len(response.Query.Pages))
	for _, page := range response.Query.Pages {
		items = append(items, RawItem(page))
	}

	return items, nil
}

func (a *WikipediaAdapter) Normalize(item RawItem) (models.NormalizedContent, error) {
	if item == nil {
		return models.NormalizedContent{}, domain.ErrMalformedItem
	}

	extract := stringVal(item, "extract")
	if extract == "" {
		return models.NormalizedContent{}, fmt.Errorf("%w: page has no extract", domain.ErrMalformedItem)
	}

	metadata := map[string]string{}
	if pageID, ok := floatVal(item, "pageid"); ok {
		metadata["page_id"] = strconv.Itoa(int(pageID))
	}

	return models.NormalizedContent{
		Source:     wikipediaName,
		SourceType: models.SourceTypeText,
		Title:      stringVal(item, "title"),
		Content:    truncate(extract, 4000),
		URL:        stringVal(item, "fullurl"),
		Metadata:   metadata,
	}, nil
}
