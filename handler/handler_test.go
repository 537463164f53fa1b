// ABOUTME: This file tests the REST handlers with stubbed collaborators
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewvu270/MindForge-sub000/cache"
	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/models"
	"github.com/andrewvu270/MindForge-sub000/orchestrator"
	"github.com/andrewvu270/MindForge-sub000/synthesis"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

type stubFetcher struct {
	outcome     models.Outcome
	lastRequest orchestrator.FallbackRequest
	fieldCalls  int
	topicCalls  int
	allCalls    int
}

func (s *stubFetcher) FetchWithFallback(ctx context.Context, req orchestrator.FallbackRequest) models.Outcome {
	s.lastRequest = req
	return s.outcome
}

func (s *stubFetcher) InvalidateField(field, topic string) int { s.fieldCalls++; return 2 }
func (s *stubFetcher) InvalidateTopic(topic string) int        { s.topicCalls++; return 1 }
func (s *stubFetcher) InvalidateAll()                          { s.allCalls++ }
func (s *stubFetcher) CacheStats() cache.Stats {
	return cache.Stats{Size: 4, Hits: 10, Misses: 2, HitRatePercent: 83.3}
}

func completeOutcome() models.Outcome {
	return models.Outcome{
		Items: []models.NormalizedContent{
			{Source: "wikipedia", SourceType: models.SourceTypeText, Title: "Gravity", Content: "text"},
			{Source: "rssfeed", SourceType: models.SourceTypeNews, Title: "Feed item", Content: "text"},
		},
		UniqueSourceCount: 2,
		Completeness:      models.CompletenessComplete,
	}
}

func TestContentHandler_HandleFetchContent(t *testing.T) {
	tests := map[string]struct {
		query      string
		outcome    models.Outcome
		wantStatus int
		wantMin    int
	}{
		"success": {
			query:      "field=science&topic=gravity&min_sources=2",
			outcome:    completeOutcome(),
			wantStatus: http.StatusOK,
			wantMin:    2,
		},
		"missing topic": {
			query:      "field=science",
			wantStatus: http.StatusBadRequest,
		},
		"non-numeric min_sources ignored": {
			query:      "topic=gravity&min_sources=abc",
			outcome:    completeOutcome(),
			wantStatus: http.StatusOK,
			wantMin:    0,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			fetcher := &stubFetcher{outcome: tc.outcome}
			h := NewContentHandler(fetcher, testLogger())

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/content?"+tc.query, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h.HandleFetchContent(c)

			if tc.wantStatus != http.StatusOK {
				var httpErr *echo.HTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, tc.wantStatus, httpErr.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.wantMin, fetcher.lastRequest.MinSources)

			var resp ContentResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "complete", resp.Completeness)
			assert.Equal(t, 2, resp.SourceCount)
			assert.Len(t, resp.Items, 2)
		})
	}
}

func TestContentHandler_HandleCacheStats(t *testing.T) {
	h := NewContentHandler(&stubFetcher{}, testLogger())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.HandleCacheStats(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var stats cache.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.Size)
	assert.Equal(t, uint64(10), stats.Hits)
}

func TestContentHandler_HandleInvalidateCache(t *testing.T) {
	tests := map[string]struct {
		body       string
		wantStatus int
		check      func(t *testing.T, f *stubFetcher)
	}{
		"all scope": {
			body:       `{"scope": "all"}`,
			wantStatus: http.StatusOK,
			check:      func(t *testing.T, f *stubFetcher) { assert.Equal(t, 1, f.allCalls) },
		},
		"topic scope": {
			body:       `{"scope": "topic", "topic": "gravity"}`,
			wantStatus: http.StatusOK,
			check:      func(t *testing.T, f *stubFetcher) { assert.Equal(t, 1, f.topicCalls) },
		},
		"field scope": {
			body:       `{"scope": "field", "field": "science", "topic": "gravity"}`,
			wantStatus: http.StatusOK,
			check:      func(t *testing.T, f *stubFetcher) { assert.Equal(t, 1, f.fieldCalls) },
		},
		"topic scope without topic": {
			body:       `{"scope": "topic"}`,
			wantStatus: http.StatusBadRequest,
		},
		"unknown scope": {
			body:       `{"scope": "everything"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			fetcher := &stubFetcher{}
			h := NewContentHandler(fetcher, testLogger())

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()

			err := h.HandleInvalidateCache(e.NewContext(req, rec))

			if tc.wantStatus != http.StatusOK {
				var httpErr *echo.HTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, tc.wantStatus, httpErr.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, rec.Code)
			if tc.check != nil {
				tc.check(t, fetcher)
			}
		})
	}
}

type stubSynthesizer struct {
	lesson *synthesis.Lesson
	err    error
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, req synthesis.Request) (*synthesis.Lesson, error) {
	return s.lesson, s.err
}

type stubWriter struct {
	stored *models.LessonRecord
	err    error
}

func (s *stubWriter) Store(ctx context.Context, record *models.LessonRecord) error {
	s.stored = record
	return s.err
}

func TestLessonHandler_HandleGenerateLesson(t *testing.T) {
	goodLesson := &synthesis.Lesson{
		Title:              "Gravity",
		Content:            "Full lesson text.",
		KeyConcepts:        []string{"mass"},
		LearningObjectives: []string{"explain gravity"},
	}

	tests := map[string]struct {
		body       string
		outcome    models.Outcome
		synthErr   error
		writeErr   error
		wantStatus int
	}{
		"success": {
			body:       `{"field": "science", "topic": "gravity", "word_budget": 400}`,
			outcome:    completeOutcome(),
			wantStatus: http.StatusCreated,
		},
		"missing topic": {
			body:       `{"field": "science"}`,
			wantStatus: http.StatusBadRequest,
		},
		"no content found": {
			body:       `{"topic": "gravity"}`,
			outcome:    models.Outcome{Completeness: models.CompletenessPartial},
			wantStatus: http.StatusNotFound,
		},
		"synthesis backends exhausted": {
			body:       `{"topic": "gravity"}`,
			outcome:    completeOutcome(),
			synthErr:   domain.ErrAllBackendsFailed,
			wantStatus: http.StatusBadGateway,
		},
		"storage failure": {
			body:       `{"topic": "gravity"}`,
			outcome:    completeOutcome(),
			writeErr:   errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			fetcher := &stubFetcher{outcome: tc.outcome}
			synthesizer := &stubSynthesizer{lesson: goodLesson, err: tc.synthErr}
			writer := &stubWriter{err: tc.writeErr}
			h := NewLessonHandler(fetcher, synthesizer, writer, testLogger())

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/lessons", strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()

			err := h.HandleGenerateLesson(e.NewContext(req, rec))

			if tc.wantStatus != http.StatusCreated {
				var httpErr *echo.HTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, tc.wantStatus, httpErr.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, http.StatusCreated, rec.Code)

			var resp GenerateLessonResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Gravity", resp.Lesson.Title)
			assert.Equal(t, 2, resp.Lesson.SourceCount)
			assert.NotEmpty(t, resp.Lesson.ID)

			require.NotNil(t, writer.stored)
			assert.Equal(t, []string{"mass"}, writer.stored.KeyConcepts)
		})
	}
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	t.Run("without database", func(t *testing.T) {
		h := NewHealthHandler(nil, []string{"wikipedia", "rssfeed"})

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		rec := httptest.NewRecorder()

		require.NoError(t, h.HandleHealth(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Empty(t, resp.Database)
	})

	t.Run("database unreachable degrades status", func(t *testing.T) {
		h := NewHealthHandler(failingPinger{}, []string{"wikipedia"})

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		rec := httptest.NewRecorder()

		require.NoError(t, h.HandleHealth(e.NewContext(req, rec)))

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "unreachable", resp.Database)
	})
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("no route to host") }
