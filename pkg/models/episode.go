package models

import (
	"time"
)

// EpisodeStatus represents the lifecycle state of an episode
type EpisodeStatus string

const (
	EpisodeStatusDraft     EpisodeStatus = "DRAFT"
	EpisodeStatusPublished EpisodeStatus = "PUBLISHED"
	EpisodeStatusArchived  EpisodeStatus = "ARCHIVED"
)

// Episode is embedded in a Podcast document. It carries no id field: the
// episode's identity is its position in the parent's Episodes slice, so
// deleting episode k shifts the identity of every episode after k.
type Episode struct {
	Title           string        `json:"title" bson:"title"`
	Description     string        `json:"description" bson:"description"`
	ImagePath       string        `json:"image_path,omitempty" bson:"imagePath,omitempty"`
	AudioPath       string        `json:"audio_path,omitempty" bson:"audioPath,omitempty"`
	DurationSeconds int64         `json:"duration_seconds" bson:"durationSeconds"`
	Status          EpisodeStatus `json:"status" bson:"status"`
	CreatedAt       time.Time     `json:"created_at" bson:"createdAt"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updatedAt"`
	PublishedAt     *time.Time    `json:"published_at,omitempty" bson:"publishedAt,omitempty"`
}
