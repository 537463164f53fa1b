// ABOUTME: This file implements the arXiv source adapter for academic papers
// ABOUTME: The arXiv API serves Atom, which the gofeed parser handles directly
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/andrewvu270/MindForge-sub000/config"
	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/models"
	"github.com/andrewvu270/MindForge-sub000/utils/htmltext"
)

const arxivName = "arxiv"

type ArxivAdapter struct {
	parser *gofeed.Parser
	cfg    config.AdapterConfig
	logger *slog.Logger
}

func NewArxivAdapter(client *Client, cfg config.AdapterConfig, logger *slog.Logger) *ArxivAdapter {
	parser := gofeed.NewParser()
	parser.Client = client.HTTPClient()

	return &ArxivAdapter{parser: parser, cfg: cfg, logger: logger}
}

func (a *ArxivAdapter) Name() string { return arxivName }

func (a *ArxivAdapter) Descriptor() Descriptor {
	return Descriptor{
		Name:       arxivName,
		SourceType: models.SourceTypeText,
		DefaultTTL: a.cfg.TTL,
		Timeout:    a.cfg.Timeout,
		MaxRetries: a.cfg.MaxRetries,
	}
}

func (a *ArxivAdapter) Fetch(ctx context.Context, topic string, limit int) ([]RawItem, error) {
	query := url.Values{
		"search_query": {fmt.Sprintf(`all:%q`, topic)},
		"max_results":  {strconv.Itoa(limit)},
		"sortBy":       {"relevance"},
	}

	feed, err := a.parser.ParseURLWithContext(a.cfg.BaseURL+"?"+query.Encode(), ctx)
	if err != nil {
		return nil, err
	}

	items := make([]RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item := RawItem{
			"title":   entry.Title,
			"summary": entry.Description,
			"link":    entry.Link,
		}

		authors := make([]any, 0, len(entry.Authors))
		for _, author := range entry.Authors {
			if author != nil && author.Name != "" {
				authors = append(authors, author.Name)
			}
		}
		item["authors"] = authors

		if entry.PublishedParsed != nil {
			item["published"] = entry.PublishedParsed.UTC().Format("2006-01-02")
		}

		items = append(items, item)
	}

	return items, nil
}

func (a *ArxivAdapter) Normalize(item RawItem) (models.NormalizedContent, error) {
	if item == nil {
		return models.NormalizedContent{}, domain.ErrMalformedItem
	}

	abstract := htmltext.ExtractText(stringVal(item, "summary"))
	if abstract == "" {
		return models.NormalizedContent{}, fmt.Errorf("%w: paper has no abstract", domain.ErrMalformedItem)
	}

	metadata := map[string]string{}
	if authors := stringSliceVal(item, "authors"); len(authors) > 0 {
		metadata["authors"] = strings.Join(authors, ", ")
	}
	if published := stringVal(item, "published"); published != "" {
		metadata["published"] = published
	}

	// arXiv titles embed newlines when they wrap.
	title := strings.Join(strings.Fields(stringVal(item, "title")), " ")

	return models.NormalizedContent{
		Source:     arxivName,
		SourceType: models.SourceTypeText,
		Title:      title,
		Content:    truncate(abstract, 4000),
		URL:        stringVal(item, "link"),
		Metadata:   metadata,
	}, nil
}
