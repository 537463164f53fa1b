// ABOUTME: This file implements the Alpha Vantage source adapter for live quotes
// ABOUTME: Topic keywords resolve to tickers first, then quotes are fetched per ticker
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/andrewvu270/MindForge-sub000/config"
	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/models"
)

const alphaVantageName = "alphavantage"

// maxQuoteLookups bounds the per-topic quote calls; the free tier allows very
// few requests per minute.
const maxQuoteLookups = 3

type AlphaVantageAdapter struct {
	client *Client
	cfg    config.AdapterConfig
	logger *slog.Logger
}

func NewAlphaVantageAdapter(client *Client, cfg config.AdapterConfig, logger *slog.Logger) (*AlphaVantageAdapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("alphavantage adapter: %w (set ALPHAVANTAGE_API_KEY)", domain.ErrMissingCredentials)
	}
	return &AlphaVantageAdapter{client: client, cfg: cfg, logger: logger}, nil
}

func (a *AlphaVantageAdapter) Name() string { return alphaVantageName }

func (a *AlphaVantageAdapter) Descriptor() Descriptor {
	return Descriptor{
		Name:       alphaVantageName,
		SourceType: models.SourceTypeNumeric,
		DefaultTTL: a.cfg.TTL,
		Timeout:    a.cfg.Timeout,
		MaxRetries: a.cfg.MaxRetries,
	}
}

func (a *AlphaVantageAdapter) Fetch(ctx context.Context, topic string, limit int) ([]RawItem, error) {
	matches, err := a.searchSymbols(ctx, topic)
	if err != nil {
		return nil, err
	}

	if limit > maxQuoteLookups {
		limit = maxQuoteLookups
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}

	items := make([]RawItem, 0, len(matches))
	for _, match := range matches {
		symbol := stringVal(match, "1. symbol")
		if symbol == "" {
			continue
		}

		quote, err := a.fetchQuote(ctx, symbol)
		if err != nil {
			a.logger.Warn("quote fetch failed", "symbol", symbol, "error", err)
			continue
		}

		item := RawItem{
			"symbol": symbol,
			"name":   stringVal(match, "2. name"),
			"region": stringVal(match, "4. region"),
		}
		for k, v := range quote {
			item[k] = v
		}
		items = append(items, item)
	}

	return items, nil
}

func (a *AlphaVantageAdapter) searchSymbols(ctx context.Context, keywords string) ([]RawItem, error) {
	query := url.Values{
		"function": {"SYMBOL_SEARCH"},
		"keywords": {keywords},
		"apikey":   {a.cfg.APIKey},
	}

	var response struct {
		BestMatches []map[string]any `json:"bestMatches"`
	}

	if err := a.client.GetJSON(ctx, a.cfg.BaseURL+"/query?"+query.Encode(), nil, &response); err != nil {
		return nil, err
	}

	matches := make([]RawItem, 0, len(response.BestMatches))
	for _, match := range response.BestMatches {
		matches = append(matches, RawItem(match))
	}
	return matches, nil
}

func (a *AlphaVantageAdapter) fetchQuote(ctx context.Context, symbol string) (RawItem, error) {
	query := url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
		"apikey":   {a.cfg.APIKey},
	}

	var response struct {
		GlobalQuote map[string]any `json:"Global Quote"`
	}

	if err := a.client.GetJSON(ctx, a.cfg.BaseURL+"/query?"+query.Encode(), nil, &response); err != nil {
		return nil, err
	}

	if len(response.GlobalQuote) == 0 {
		return nil, domain.ErrNoContent
	}

	return RawItem(response.GlobalQuote), nil
}

func (a *AlphaVantageAdapter) Normalize(item RawItem) (models.NormalizedContent, error) {
	if item == nil {
		return models.NormalizedContent{}, domain.ErrMalformedItem
	}

	symbol := stringVal(item, "symbol")
	price := stringVal(item, "05. price")
	if symbol == "" || price == "" {
		return models.NormalizedContent{}, fmt.Errorf("%w: quote missing symbol or price", domain.ErrMalformedItem)
	}

	name := stringVal(item, "name")
	change := stringVal(item, "09. change")
	changePct := stringVal(item, "10. change percent")

	content := fmt.Sprintf("%s (%s) last traded at %s, a change of %s (%s) on the previous close.",
		name, symbol, price, change, changePct)

	metadata := map[string]string{
		"symbol": symbol,
		"price":  price,
	}
	if region := stringVal(item, "region"); region != "" {
		metadata["region"] = region
	}
	if volume := stringVal(item, "06. volume"); volume != "" {
		metadata["volume"] = volume
	}

	return models.NormalizedContent{
		Source:     alphaVantageName,
		SourceType: models.SourceTypeNumeric,
		Title:      fmt.Sprintf("%s quote: %s", symbol, price),
		Content:    content,
		URL:        "https://www.alphavantage.co/query?function=GLOBAL_QUOTE&symbol=" + url.QueryEscape(symbol),
		Metadata:   metadata,
	}, nil
}
