package models

import (
	"time"

	"github.com/google/uuid"
)

// LessonRecord is a generated synthesis artifact persisted by the writer.
type LessonRecord struct {
	ID                 string    `db:"id"                  json:"id"`
	Field              string    `db:"field"               json:"field"`
	Topic              string    `db:"topic"               json:"topic"`
	Title              string    `db:"title"               json:"title"`
	Content            string    `db:"content"             json:"content"`
	KeyConcepts        []string  `db:"key_concepts"        json:"key_concepts"`
	LearningObjectives []string  `db:"learning_objectives" json:"learning_objectives"`
	SourceCount        int       `db:"source_count"        json:"source_count"`
	CreatedAt          time.Time `db:"created_at"          json:"created_at"`
}

// NewLessonRecord assigns identity and creation time to a lesson.
func NewLessonRecord(field, topic, title, content string) *LessonRecord {
	return &LessonRecord{
		ID:        uuid.NewString(),
		Field:     field,
		Topic:     topic,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// RegenerateID assigns a fresh identifier, used to resolve duplicate-key
// conflicts during idempotent writes.
func (l *LessonRecord) RegenerateID() {
	l.ID = uuid.NewString()
}
