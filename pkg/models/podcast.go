package models

import (
	"time"
)

// PodcastStatus represents the lifecycle state of a podcast
type PodcastStatus string

const (
	PodcastStatusDraft     PodcastStatus = "DRAFT"
	PodcastStatusPublished PodcastStatus = "PUBLISHED"
	PodcastStatusArchived  PodcastStatus = "ARCHIVED"
	// PodcastStatusFlagged is a filter pseudo-status: flagging is the boolean
	// Flagged field layered on top of the real status, not a fourth state.
	PodcastStatusFlagged PodcastStatus = "FLAGGED"
)

// Podcast represents a show owned by an account. Episodes are embedded in the
// podcast document; an episode's identity is its index in the Episodes slice.
type Podcast struct {
	ID          string        `json:"id" bson:"_id,omitempty"`
	AccountID   string        `json:"account_id" bson:"accountId"`
	Title       string        `json:"title" bson:"title"`
	Description string        `json:"description" bson:"description"`
	Category    string        `json:"category" bson:"category"`
	CoverPath   string        `json:"cover_path,omitempty" bson:"coverPath,omitempty"`
	BannerPath  string        `json:"banner_path,omitempty" bson:"bannerPath,omitempty"`
	Episodes    []Episode     `json:"episodes" bson:"episodes"`
	Flagged     bool          `json:"flagged" bson:"flagged"`
	Status      PodcastStatus `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updatedAt"`
	PublishedAt *time.Time    `json:"published_at,omitempty" bson:"publishedAt,omitempty"`
}

// HasPublishedEpisode reports whether any embedded episode is PUBLISHED.
func (p *Podcast) HasPublishedEpisode() bool {
	for i := range p.Episodes {
		if p.Episodes[i].Status == EpisodeStatusPublished {
			return true
		}
	}
	return false
}

// PublishedEpisodeCount counts embedded episodes in PUBLISHED status.
func (p *Podcast) PublishedEpisodeCount() int {
	n := 0
	for i := range p.Episodes {
		if p.Episodes[i].Status == EpisodeStatusPublished {
			n++
		}
	}
	return n
}

// LastEpisodeDate returns the latest publishedAt among published episodes,
// or nil when none are published.
func (p *Podcast) LastEpisodeDate() *time.Time {
	var last *time.Time
	for i := range p.Episodes {
		e := &p.Episodes[i]
		if e.Status != EpisodeStatusPublished || e.PublishedAt == nil {
			continue
		}
		if last == nil || e.PublishedAt.After(*last) {
			last = e.PublishedAt
		}
	}
	return last
}
