// ABOUTME: This file implements the syndicated feed source adapter via gofeed
// ABOUTME: Second half of the baseline pair used for unrecognized fields
package adapter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/andrewvu270/MindForge-sub000/config"
	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/models"
	"github.com/andrewvu270/MindForge-sub000/utils/htmltext"
)

const rssFeedName = "rssfeed"

type RSSFeedAdapter struct {
	parser   *gofeed.Parser
	feedURLs []string
	cfg      config.AdapterConfig
	logger   *slog.Logger
}

func NewRSSFeedAdapter(client *Client, cfg config.AdapterConfig, logger *slog.Logger) *RSSFeedAdapter {
	parser := gofeed.NewParser()
	parser.Client = client.HTTPClient()

	return &RSSFeedAdapter{
		parser:   parser,
		feedURLs: cfg.FeedURLs,
		cfg:      cfg,
		logger:   logger,
	}
}

func (a *RSSFeedAdapter) Name() string { return rssFeedName }

func (a *RSSFeedAdapter) Descriptor() Descriptor {
	return Descriptor{
		Name:       rssFeedName,
		SourceType: models.SourceTypeNews,
		DefaultTTL: a.cfg.TTL,
		Timeout:    a.cfg.Timeout,
		MaxRetries: a.cfg.MaxRetries,
	}
}

// Fetch walks the configured feeds and keeps items whose title or description
// mentions the topic. A feed that fails to parse is skipped; the fetch only
// fails when every feed does.
func (a *RSSFeedAdapter) Fetch(ctx context.Context, topic string, limit int) ([]RawItem, error) {
	needle := strings.ToLower(topic)
	var items []RawItem
	var lastErr error
	parsedAny := false

	for _, feedURL := range a.feedURLs {
		feed, err := a.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			a.logger.Warn("failed to parse feed", "url", feedURL, "error", err)
			lastErr = err
			continue
		}
		parsedAny = true

		for _, entry := range feed.Items {
			if len(items) >= limit {
				break
			}
			haystack := strings.ToLower(entry.Title + " " + entry.Description)
			if !strings.Contains(haystack, needle) {
				continue
			}

			item := RawItem{
				"title":       entry.Title,
				"description": entry.Description,
				"link":        entry.Link,
				"feed_title":  feed.Title,
			}
			if entry.Content != "" {
				item["content"] = entry.Content
			}
			if entry.PublishedParsed != nil {
				item["published"] = entry.PublishedParsed.UTC().Format("2006-01-02T15:04:05Z")
			}
			items = append(items, item)
		}

		if len(items) >= limit {
			break
		}
	}

	if !parsedAny && lastErr != nil {
		return nil, lastErr
	}

	return items, nil
}

func (a *RSSFeedAdapter) Normalize(item RawItem) (models.NormalizedContent, error) {
	if item == nil {
		return models.NormalizedContent{}, domain.ErrMalformedItem
	}

	body := stringVal(item, "content")
	if body == "" {
		body = stringVal(item, "description")
	}

	metadata := map[string]string{}
	if feedTitle := stringVal(item, "feed_title"); feedTitle != "" {
		metadata["feed"] = feedTitle
	}
	if published := stringVal(item, "published"); published != "" {
		metadata["published"] = published
	}

	return models.NormalizedContent{
		Source:     rssFeedName,
		SourceType: models.SourceTypeNews,
		Title:      htmltext.Sanitize(stringVal(item, "title")),
		Content:    truncate(htmltext.ExtractText(body), 4000),
		URL:        stringVal(item, "link"),
		Metadata:   metadata,
	}, nil
}
