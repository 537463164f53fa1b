// ABOUTME: This file implements the Open Library source adapter for book metadata
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/andrewvu270/MindForge-sub000/config"
	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/models"
)

const openLibraryName = "openlibrary"

type OpenLibraryAdapter struct {
	client *Client
	cfg    config.AdapterConfig
	logger *slog.Logger
}

func NewOpenLibraryAdapter(client *Client, cfg config.AdapterConfig, logger *slog.Logger) *OpenLibraryAdapter {
	return &OpenLibraryAdapter{client: client, cfg: cfg, logger: logger}
}

func (a *OpenLibraryAdapter) Name() string { return openLibraryName }

func (a *OpenLibraryAdapter) Descriptor() Descriptor {
	return Descriptor{
		Name:       openLibraryName,
		SourceType: models.SourceTypeBook,
		DefaultTTL: a.cfg.TTL,
		Timeout:    a.cfg.Timeout,
		MaxRetries: a.cfg.MaxRetries,
	}
}

func (a *OpenLibraryAdapter) Fetch(ctx context.Context, topic string, limit int) ([]RawItem, error) {
	query := url.Values{
		"q":      {topic},
		"limit":  {strconv.Itoa(limit)},
		"fields": {"key,title,author_name,first_publish_year,subject,first_sentence"},
	}

	var response struct {
		Docs []map[string]any `json:"docs"`
	}

	if err := a.client.GetJSON(ctx, a.cfg.BaseURL+"/search.json?"+query.Encode(), nil, &response); err != nil {
		return nil, err
	}

	items := make([]RawItem, 0, len(response.Docs))
	for _, doc := range response.Docs {
		items = append(items, RawItem(doc))
	}

	return items, nil
}

// Normalize builds a prose description from the search document, since the
// search API returns no body text of its own.
func (a *OpenLibraryAdapter) Normalize(item RawItem) (models.NormalizedContent, error) {
	if item == nil {
		return models.NormalizedContent{}, domain.ErrMalformedItem
	}

	title := stringVal(item, "title")
	if title == "" {
		return models.NormalizedContent{}, fmt.Errorf("%w: book has no title", domain.ErrMalformedItem)
	}

	authors := stringSliceVal(item, "author_name")
	subjects := stringSliceVal(item, "subject")

	var parts []string
	if len(authors) > 0 {
		parts = append(parts, fmt.Sprintf("%q by %s.", title, strings.Join(authors, ", ")))
	} else {
		parts = append(parts, fmt.Sprintf("%q.", title))
	}
	if year, ok := floatVal(item, "first_publish_year"); ok {
		parts = append(parts, fmt.Sprintf("First published in %d.", int(year)))
	}
	if sentences := stringSliceVal(item, "first_sentence"); len(sentences) > 0 {
		parts = append(parts, sentences[0])
	}
	if len(subjects) > 0 {
		if len(subjects) > 8 {
			subjects = subjects[:8]
		}
		parts = append(parts, "Subjects: "+strings.Join(subjects, ", ")+".")
	}

	metadata := map[string]string{}
	if len(authors) > 0 {
		metadata["authors"] = strings.Join(authors, ", ")
	}
	if year, ok := floatVal(item, "first_publish_year"); ok {
		metadata["first_publish_year"] = strconv.Itoa(int(year))
	}

	link := ""
	if key := stringVal(item, "key"); key != "" {
		link = "https://openlibrary.org" + key
	}

	return models.NormalizedContent{
		Source:     openLibraryName,
		SourceType: models.SourceTypeBook,
		Title:      title,
		Content:    strings.Join(parts, " "),
		URL:        link,
		Metadata:   metadata,
	}, nil
}
