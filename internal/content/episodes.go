package content

import (
	"context"

	"github.com/berlinbruno/podpirate/internal/apperr"
	"github.com/berlinbruno/podpirate/pkg/models"
)

// CreateEpisodeRequest carries the fields for a new episode.
type CreateEpisodeRequest struct {
	Title           string `json:"title" binding:"required,max=120"`
	Description     string `json:"description" binding:"max=4000"`
	DurationSeconds int64  `json:"duration_seconds" binding:"required,min=1"`
}

// AddEpisode appends a DRAFT episode to an owned podcast and returns the
// podcast together with the new episode's index.
func (s *Service) AddEpisode(ctx context.Context, accountID, podcastID string, req CreateEpisodeRequest) (*models.Podcast, int, error) {
	podcast, err := s.ownedPodcast(ctx, accountID, podcastID)
	if err != nil {
		return nil, 0, err
	}

	now := s.now().UTC()
	podcast.Episodes = append(podcast.Episodes, models.Episode{
		Title:           req.Title,
		Description:     req.Description,
		DurationSeconds: req.DurationSeconds,
		Status:          models.EpisodeStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	})

	if err := s.podcasts.Save(ctx, podcast); err != nil {
		return nil, 0, err
	}
	s.invalidatePodcast(ctx, podcast.ID)
	return podcast, len(podcast.Episodes) - 1, nil
}

// UpdateEpisodeRequest carries a partial episode update. Nil leaves a
// field untouched; a pointer to the zero value clears it.
type UpdateEpisodeRequest struct {
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	ImagePath       *string `json:"image_path,omitempty"`
	AudioPath       *string `json:"audio_path,omitempty"`
	DurationSeconds *int64  `json:"duration_seconds,omitempty" binding:"omitempty,min=1"`
}

// UpdateEpisode applies a partial update to the episode at index. Replaced
// media paths release the previous blobs.
func (s *Service) UpdateEpisode(ctx context.Context, accountID, podcastID string, index int, req UpdateEpisodeRequest) (*models.Podcast, error) {
	podcast, err := s.ownedPodcast(ctx, accountID, podcastID)
	if err != nil {
		return nil, err
	}
	episode, err := episodeAt(podcast, index)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		episode.Title = *req.Title
	}
	if req.Description != nil {
		episode.Description = *req.Description
	}
	if req.DurationSeconds != nil {
		episode.DurationSeconds = *req.DurationSeconds
	}
	if req.ImagePath != nil && *req.ImagePath != episode.ImagePath {
		if err := s.media.Replace(ctx, *req.ImagePath, episode.ImagePath); err != nil {
			return nil, err
		}
		episode.ImagePath = *req.ImagePath
	}
	if req.AudioPath != nil && *req.AudioPath != episode.AudioPath {
		if err := s.media.Replace(ctx, *req.AudioPath, episode.AudioPath); err != nil {
			return nil, err
		}
		episode.AudioPath = *req.AudioPath
	}
	episode.UpdatedAt = s.now().UTC()

	if err := s.podcasts.Save(ctx, podcast); err != nil {
		return nil, err
	}
	s.invalidatePodcast(ctx, podcast.ID)
	return podcast, nil
}

// PublishEpisode transitions the episode at index to PUBLISHED. The audio
// reference must be set and the blob must actually exist in storage.
func (s *Service) PublishEpisode(ctx context.Context, accountID, podcastID string, index int) (*models.Podcast, error) {
	podcast, err := s.ownedPodcast(ctx, accountID, podcastID)
	if err != nil {
		return nil, err
	}
	episode, err := episodeAt(podcast, index)
	if err != nil {
		return nil, err
	}

	if episode.AudioPath == "" {
		return nil, apperr.ErrEpisodeMissingAudio
	}
	if err := s.media.RequireUploaded(ctx, episode.AudioPath); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	episode.Status = models.EpisodeStatusPublished
	episode.PublishedAt = &now
	episode.UpdatedAt = now

	if err := s.podcasts.Save(ctx, podcast); err != nil {
		return nil, err
	}
	s.invalidatePodcast(ctx, podcast.ID)
	return podcast, nil
}

// ArchiveEpisode transitions the episode at index to ARCHIVED
// unconditionally and clears its publishedAt.
func (s *Service) ArchiveEpisode(ctx context.Context, accountID, podcastID string, index int) (*models.Podcast, error) {
	podcast, err := s.ownedPodcast(ctx, accountID, podcastID)
	if err != nil {
		return nil, err
	}
	episode, err := episodeAt(podcast, index)
	if err != nil {
		return nil, err
	}

	episode.Status = models.EpisodeStatusArchived
	episode.PublishedAt = nil
	episode.UpdatedAt = s.now().UTC()

	if err := s.podcasts.Save(ctx, podcast); err != nil {
		return nil, err
	}
	s.invalidatePodcast(ctx, podcast.ID)
	return podcast, nil
}

func episodeAt(podcast *models.Podcast, index int) (*models.Episode, error) {
	if index < 0 || index >= len(podcast.Episodes) {
		return nil, apperr.ErrEpisodeNotFound
	}
	return &podcast.Episodes[index], nil
}
