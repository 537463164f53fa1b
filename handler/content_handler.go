// ABOUTME: This file implements the REST handlers for content fetch and cache administration
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/andrewvu270/MindForge-sub000/cache"
	"github.com/andrewvu270/MindForge-sub000/models"
	"github.com/andrewvu270/MindForge-sub000/orchestrator"
)

// ContentFetcher is the orchestrator surface the handlers drive.
type ContentFetcher interface {
	FetchWithFallback(ctx context.Context, req orchestrator.FallbackRequest) models.Outcome
	InvalidateField(field, topic string) int
	InvalidateTopic(topic string) int
	InvalidateAll()
	CacheStats() cache.Stats
}

// ContentHandler serves the content acquisition endpoints.
type ContentHandler struct {
	fetcher ContentFetcher
	logger  *slog.Logger
}

func NewContentHandler(fetcher ContentFetcher, logger *slog.Logger) *ContentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentHandler{fetcher: fetcher, logger: logger}
}

// ContentResponse is the JSON shape of a fetch result.
type ContentResponse struct {
	Field        string                     `json:"field"`
	Topic        string                     `json:"topic"`
	Completeness string                     `json:"completeness"`
	SourceCount  int                        `json:"source_count"`
	Items        []models.NormalizedContent `json:"items"`
}

// HandleFetchContent processes GET /api/v1/content.
func (h *ContentHandler) HandleFetchContent(c echo.Context) error {
	ctx := c.Request().Context()

	field := strings.TrimSpace(c.QueryParam("field"))
	topic := strings.TrimSpace(c.QueryParam("topic"))
	if topic == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "topic query parameter is required")
	}

	req := orchestrator.FallbackRequest{
		Field:       field,
		Topic:       topic,
		MinSources:  intQueryParam(c, "min_sources", 0),
		MaxAttempts: intQueryParam(c, "max_attempts", 0),
	}

	outcome := h.fetcher.FetchWithFallback(ctx, req)

	h.logger.InfoContext(ctx, "content fetch completed",
		"field", field,
		"topic", topic,
		"sources", outcome.UniqueSourceCount,
		"completeness", outcome.Completeness,
	)

	return c.JSON(http.StatusOK, ContentResponse{
		Field:        field,
		Topic:        topic,
		Completeness: string(outcome.Completeness),
		SourceCount:  outcome.UniqueSourceCount,
		Items:        outcome.Items,
	})
}

// HandleCacheStats processes GET /api/v1/cache/stats.
func (h *ContentHandler) HandleCacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.fetcher.CacheStats())
}

// InvalidateRequest selects which cache entries to drop. Scope "all" ignores
// field and topic; "topic" requires topic; "field" requires both.
type InvalidateRequest struct {
	Scope string `json:"scope"`
	Field string `json:"field"`
	Topic string `json:"topic"`
}

// InvalidateResponse reports how many entries were removed.
type InvalidateResponse struct {
	Scope   string `json:"scope"`
	Removed int    `json:"removed,omitempty"`
}

// HandleInvalidateCache processes POST /api/v1/cache/invalidate.
func (h *ContentHandler) HandleInvalidateCache(c echo.Context) error {
	var req InvalidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	switch req.Scope {
	case "all":
		h.fetcher.InvalidateAll()
		return c.JSON(http.StatusOK, InvalidateResponse{Scope: req.Scope})
	case "topic":
		if req.Topic == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "topic is required for topic scope")
		}
		removed := h.fetcher.InvalidateTopic(req.Topic)
		return c.JSON(http.StatusOK, InvalidateResponse{Scope: req.Scope, Removed: removed})
	case "field":
		if req.Field == "" || req.Topic == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "field and topic are required for field scope")
		}
		removed := h.fetcher.InvalidateField(req.Field, req.Topic)
		return c.JSON(http.StatusOK, InvalidateResponse{Scope: req.Scope, Removed: removed})
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "scope must be one of: all, topic, field")
	}
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
