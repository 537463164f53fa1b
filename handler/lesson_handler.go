// ABOUTME: This file implements the lesson generation endpoint
// ABOUTME: Ties content acquisition, synthesis, and the idempotent writer into one operation
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/models"
	"github.com/andrewvu270/MindForge-sub000/orchestrator"
	"github.com/andrewvu270/MindForge-sub000/synthesis"
)

// LessonSynthesizer generates a lesson from fetched content.
type LessonSynthesizer interface {
	Synthesize(ctx context.Context, req synthesis.Request) (*synthesis.Lesson, error)
}

// LessonWriter persists a generated lesson durably.
type LessonWriter interface {
	Store(ctx context.Context, record *models.LessonRecord) error
}

// LessonHandler serves POST /api/v1/lessons.
type LessonHandler struct {
	fetcher     ContentFetcher
	synthesizer LessonSynthesizer
	writer      LessonWriter
	logger      *slog.Logger
}

func NewLessonHandler(fetcher ContentFetcher, synthesizer LessonSynthesizer, writer LessonWriter, logger *slog.Logger) *LessonHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LessonHandler{
		fetcher:     fetcher,
		synthesizer: synthesizer,
		writer:      writer,
		logger:      logger,
	}
}

// GenerateLessonRequest is the JSON body for lesson generation.
type GenerateLessonRequest struct {
	Field      string `json:"field"`
	Topic      string `json:"topic"`
	WordBudget int    `json:"word_budget"`
	MinSources int    `json:"min_sources"`
}

// GenerateLessonResponse wraps the stored lesson with fetch provenance.
type GenerateLessonResponse struct {
	Lesson       *models.LessonRecord `json:"lesson"`
	Completeness string               `json:"completeness"`
	SourceCount  int                  `json:"source_count"`
}

// HandleGenerateLesson fetches content for the topic, synthesizes a lesson
// from it, and stores the result. Synthesis backend exhaustion maps to 502
// so callers can distinguish upstream generation failures from our own.
func (h *LessonHandler) HandleGenerateLesson(c echo.Context) error {
	ctx := c.Request().Context()

	var req GenerateLessonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "topic is required")
	}

	outcome := h.fetcher.FetchWithFallback(ctx, orchestrator.FallbackRequest{
		Field:      req.Field,
		Topic:      req.Topic,
		MinSources: req.MinSources,
	})
	if len(outcome.Items) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no content available for topic")
	}

	lesson, err := h.synthesizer.Synthesize(ctx, synthesis.Request{
		Field:      req.Field,
		Topic:      req.Topic,
		WordBudget: req.WordBudget,
		Items:      outcome.Items,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAllBackendsFailed) {
			h.logger.ErrorContext(ctx, "all synthesis backends failed",
				"topic", req.Topic,
				"error", err)
			return echo.NewHTTPError(http.StatusBadGateway, "lesson generation unavailable")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lesson generation failed")
	}

	record := models.NewLessonRecord(req.Field, req.Topic, lesson.Title, lesson.Content)
	record.KeyConcepts = lesson.KeyConcepts
	record.LearningObjectives = lesson.LearningObjectives
	record.SourceCount = outcome.UniqueSourceCount

	if err := h.writer.Store(ctx, record); err != nil {
		h.logger.ErrorContext(ctx, "failed to store lesson",
			"lesson_id", record.ID,
			"topic", req.Topic,
			"error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store lesson")
	}

	h.logger.InfoContext(ctx, "lesson generated",
		"lesson_id", record.ID,
		"field", req.Field,
		"topic", req.Topic,
		"source_count", record.SourceCount)

	return c.JSON(http.StatusCreated, GenerateLessonResponse{
		Lesson:       record,
		Completeness: string(outcome.Completeness),
		SourceCount:  outcome.UniqueSourceCount,
	})
}
