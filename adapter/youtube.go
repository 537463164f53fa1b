// ABOUTME: This file implements the YouTube Data API source adapter
// ABOUTME: Fetches video metadata only; transcripts are synthesized downstream
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

const youTubeName = "youtube"

type YouTubeAdapter struct {
	client *Client
	cfg    config.AdapterConfig
	logger *slog.Logger
}

func NewYouTubeAdapter(client *Client, cfg config.AdapterConfig, logger *slog.Logger) (*YouTubeAdapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("youtube adapter: %w (set YOUTUBE_API_KEY)", domain.ErrMissingCredentials)
	}
	return &YouTubeAdapter{client: client, cfg: cfg, logger: logger}, nil
}

func (a *YouTubeAdapter) Name() string { return youTubeName }

func (a *YouTubeAdapter) Descriptor() Descriptor {
	return Descriptor{
		Name:       youTubeName,
		SourceType: models.SourceTypeVideoTranscript,
		DefaultTTL: a.cfg.TTL,
		Timeout:    a.cfg.Timeout,
		MaxRetries: a.cfg.MaxRetries,
	}
}

func (a *YouTubeAdapter) Fetch(ctx context.Context, topic string, limit int) ([]RawItem, error) {
	query := url.Values{
		"part":              {"snippet"},
		"q":                 {topic + " tutorial"},
		"maxResults":        {strconv.Itoa(limit)},
		"type":              {"video"},
		"videoEmbeddable":   {"true"},
		"relevanceLanguage": {"en"},
		"safeSearch":        {"strict"},
		"key":               {a.cfg.APIKey},
	}

	var response struct {
		Items []struct {
			ID      map[string]any `json:"id"`
			Snippet map[string]any `json:"snippet"`
		} `json:"items"`
	}

	if err := a.client.GetJSON(ctx, a.cfg.BaseURL+"/search?"+query.Encode(), nil, &response); err != nil {
		return nil, err
	}

	items := make([]RawItem, 0, len(response.Items))
	for _, result := range response.Items {
		item := RawItem{}
		for k, v := range result.Snippet {
			item[k] = v
		}
		if videoID, ok := result.ID["videoId"].(string); ok {
			item["video_id"] = videoID
		}
		items = append(items, item)
	}

	return items, nil
}

func (a *YouTubeAdapter) Normalize(item RawItem) (models.NormalizedContent, error) {
	if item == nil {
		return models.NormalizedContent{}, domain.ErrMalformedItem
	}

	videoID := stringVal(item, "video_id")
	if videoID == "" {
		return models.NormalizedContent{}, fmt.Errorf("%w: search result has no video ID", domain.ErrMalformedItem)
	}

	metadata := map[string]string{
		"video_id": videoID,
	}
	if channel := stringVal(item, "channelTitle"); channel != "" {
		metadata["channel"] = channel
	}
	if published := stringVal(item, "publishedAt"); published != "" {
		metadata["published"] = published
	}

	return models.NormalizedContent{
		Source:     youTubeName,
		SourceType: models.SourceTypeVideoTranscript,
		Title:      stringVal(item, "title"),
		Content:    truncate(stringVal(item, "description"), 4000),
		URL:        "https://www.youtube.com/watch?v=" + videoID,
		Metadata:   metadata,
	}, nil
}
