// ABOUTME: This file implements Postgres persistence for generated lessons
// ABOUTME: Also serves the orchestrator's tier-3 internal archive lookups
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/models"
)

// pgUniqueViolation is the Postgres error code for duplicate keys.
const pgUniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LessonRepository stores and queries generated lesson artifacts.
type LessonRepository struct {
	db     DB
	logger *slog.Logger
}

func NewLessonRepository(db DB, logger *slog.Logger) *LessonRepository {
	return &LessonRepository{db: db, logger: logger}
}

// Upsert writes a lesson keyed by (field, topic), replacing prior content for
// the same logical key. An identifier collision surfaces as
// domain.ErrDuplicateKey so the writer can regenerate identity and retry.
func (r *LessonRepository) Upsert(ctx context.Context, lesson *models.LessonRecord) error {
	const query = `
		INSERT INTO lessons (id, field, topic, title, content, key_concepts, learning_objectives, source_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (field, topic) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			key_concepts = EXCLUDED.key_concepts,
			learning_objectives = EXCLUDED.learning_objectives,
			source_count = EXCLUDED.source_count,
			created_at = EXCLUDED.created_at`

	_, err := r.db.Exec(ctx, query,
		lesson.ID,
		lesson.Field,
		lesson.Topic,
		lesson.Title,
		lesson.Content,
		lesson.KeyConcepts,
		lesson.LearningObjectives,
		lesson.SourceCount,
		lesson.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateKey, pgErr.ConstraintName)
		}
		return fmt.Errorf("failed to upsert lesson: %w", err)
	}

	return nil
}

// SearchByTopic returns the most recent lessons matching the topic.
func (r *LessonRepository) SearchByTopic(ctx context.Context, topic string, limit int) ([]*models.LessonRecord, error) {
	const query = `
		SELECT id, field, topic, title, content, key_concepts, learning_objectives, source_count, created_at
		FROM lessons
		WHERE topic ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, topic, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*models.LessonRecord
	for rows.Next() {
		var lesson models.LessonRecord
		if err := rows.Scan(
			&lesson.ID,
			&lesson.Field,
			&lesson.Topic,
			&lesson.Title,
			&lesson.Content,
			&lesson.KeyConcepts,
			&lesson.LearningObjectives,
			&lesson.SourceCount,
			&lesson.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, &lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lesson rows iteration failed: %w", err)
	}

	return lessons, nil
}
