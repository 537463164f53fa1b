package models

import (
	"time"
)

// SourceType classifies the shape of content a provider returns.
type SourceType string

const (
	SourceTypeText            SourceType = "text"
	SourceTypeNumeric         SourceType = "numeric"
	SourceTypeVideoTranscript SourceType = "video_transcript"
	SourceTypeNews            SourceType = "news"
	SourceTypeBook            SourceType = "book"
	SourceTypeDiscussion      SourceType = "discussion"
)

// NormalizedContent is the common shape every external content item is
// converted into before downstream use. Immutable once constructed.
type NormalizedContent struct {
	Source     string            `json:"source"`
	SourceType SourceType        `json:"source_type"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	URL        string            `json:"url,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	FetchedAt  time.Time         `json:"fetched_at"`
}

// Completeness describes how an orchestration call terminated.
type Completeness string

const (
	// CompletenessComplete means the requested minimum of distinct sources was met.
	CompletenessComplete Completeness = "complete"
	// CompletenessPartial means some sources contributed but fewer than requested.
	CompletenessPartial Completeness = "partial"
	// CompletenessInternalFallback means the internal archive tier supplied content.
	CompletenessInternalFallback Completeness = "internal_fallback"
)

// Outcome is produced once per orchestration call and consumed synchronously.
type Outcome struct {
	Items             []NormalizedContent `json:"items"`
	UniqueSourceCount int                 `json:"unique_source_count"`
	Completeness      Completeness        `json:"completeness"`
}

// UniqueSourceCount counts distinct Source values in a content list.
func UniqueSourceCount(items []NormalizedContent) int {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		seen[item.Source] = struct{}{}
	}
	return len(seen)
}
