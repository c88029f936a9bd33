package content

import (
	"context"
	"time"

	"github.com/berlinbruno/podpirate/internal/apperr"
	"github.com/berlinbruno/podpirate/internal/logging"
	"github.com/berlinbruno/podpirate/internal/media"
	"github.com/berlinbruno/podpirate/internal/store"
	"github.com/berlinbruno/podpirate/pkg/models"
)

// Invalidator drops cached public views after a mutation. The Redis cache
// satisfies this; a nil invalidator disables invalidation.
type Invalidator interface {
	DeletePodcast(ctx context.Context, podcastID string) error
	DeleteProfile(ctx context.Context, accountID string) error
}

// Service drives the podcast and episode lifecycle: guarded status
// transitions, partial updates, moderation flags and cascading deletion.
// Episode identity is positional, so every episode operation addresses an
// index into the parent's embedded list.
type Service struct {
	podcasts store.PodcastStore
	accounts store.AccountStore
	media    *media.Service
	cache    Invalidator
	logger   *logging.Logger

	now func() time.Time
}

// NewService creates the content service. cache may be nil.
func NewService(podcasts store.PodcastStore, accounts store.AccountStore, mediaSvc *media.Service, cache Invalidator, logger *logging.Logger) *Service {
	return &Service{
		podcasts: podcasts,
		accounts: accounts,
		media:    mediaSvc,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// CreatePodcastRequest carries the fields for a new podcast.
type CreatePodcastRequest struct {
	Title       string `json:"title" binding:"required,max=120"`
	Description string `json:"description" binding:"max=4000"`
	Category    string `json:"category" binding:"required"`
}

// CreatePodcast creates a DRAFT podcast owned by the account.
func (s *Service) CreatePodcast(ctx context.Context, accountID string, req CreatePodcastRequest) (*models.Podcast, error) {
	podcast := &models.Podcast{
		AccountID:   accountID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      models.PodcastStatusDraft,
		Episodes:    []models.Episode{},
	}
	if err := s.podcasts.Save(ctx, podcast); err != nil {
		return nil, err
	}
	return podcast, nil
}

// UpdatePodcastRequest carries a partial podcast update. Nil leaves a field
// untouched; a pointer to the zero value clears it.
type UpdatePodcastRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	CoverPath   *string `json:"cover_path,omitempty"`
	BannerPath  *string `json:"banner_path,omitempty"`
}

// UpdatePodcast applies a partial update to an owned podcast. A replaced
// cover or banner releases the previous blob.
func (s *Service) UpdatePodcast(ctx context.Context, accountID, podcastID string, req UpdatePodcastRequest) (*models.Podcast, error) {
	podcast, err := s.ownedPodcast(ctx, accountID, podcastID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		podcast.Title = *req.Title
	}
	if req.Description != nil {
		podcast.Description = *req.Description
	}
	if req.Category != nil {
		podcast.Category = *req.Category
	}
	if req.CoverPath != nil && *req.CoverPath != podcast.CoverPath {
		if err := s.media.Replace(ctx, *req.CoverPath, podcast.CoverPath); err != nil {
			return nil, err
		}
		podcast.CoverPath = *req.CoverPath
	}
	if req.BannerPath != nil && *req.BannerPath != podcast.BannerPath {
		if err := s.media.Replace(ctx, *req.BannerPath, podcast.BannerPath); err != nil {
			return nil, err
		}
		podcast.BannerPath = *req.BannerPath
	}

	if err := s.podcasts.Save(ctx, podcast); err != nil {
		return nil, err
	}
	s.invalidatePodcast(ctx, podcast.ID)
	return podcast, nil
}

// PublishPodcast transitions an owned podcast to PUBLISHED. A flagged
// podcast can never publish; a cover image and at least one published
// episode are required, and the cover blob must actually exist.
func (s *Service) PublishPodcast(ctx context.Context, accountID, podcastID string) (*models.Podcast, error) {
	podcast, err := s.ownedPodcast(ctx, accountID, podcastID)
	if err != nil {
		return nil, err
	}

	if podcast.Flagged {
		return nil, apperr.ErrPodcastPublishForbidden
	}
	if podcast.CoverPath == "" {
		return nil, apperr.ErrPodcastMissingAssets
	}
	if err := s.media.RequireUploaded(ctx, podcast.CoverPath); err != nil {
		return nil, err
	}
	if !podcast.HasPublishedEpisode() {
		return nil, apperr.ErrPodcastMissingEpisode
	}

	now := s.now().UTC()
	podcast.Status = models.PodcastStatusPublished
	podcast.PublishedAt = &now

	if err := s.podcasts.Save(ctx, podcast); err != nil {
		return nil, err
	}
	s.invalidatePodcast(ctx, podcast.ID)
	return podcast, nil
}

// ArchivePodcast transitions an owned podcast to ARCHIVED regardless of its
// current status and clears publishedAt.
func (s *Service) ArchivePodcast(ctx context.Context, accountID, podcastID string) (*models.Podcast, error) {
	podcast, err := s.ownedPodcast(ctx, accountID, podcastID)
	if err != nil {
		return nil, err
	}

	podcast.Status = models.PodcastStatusArchived
	podcast.PublishedAt = nil

	if err := s.podcasts.Save(ctx, podcast); err != nil {
		return nil, err
	}
	s.invalidatePodcast(ctx, podcast.ID)
	return podcast, nil
}

// FlagPodcast marks a podcast for moderation. Flagging un-publishes all
// live content: a PUBLISHED podcast demotes to ARCHIVED and every
// PUBLISHED episode is archived with publishedAt cleared.
func (s *Service) FlagPodcast(ctx context.Context, admin *models.Account, podcastID string) (*models.Podcast, error) {
	if err := RequireRole(admin, models.RoleAdmin); err != nil {
		return nil, err
	}

	podcast, err := s.podcasts.GetByID(ctx, podcastID)
	if err != nil {
		return nil, err
	}
	if podcast.Flagged {
		return nil, apperr.ErrPodcastAlreadyFlagged
	}

	podcast.Flagged = true
	if podcast.Status == models.PodcastStatusPublished {
		podcast.Status = models.PodcastStatusArchived
		podcast.PublishedAt = nil
	}
	for i := range podcast.Episodes {
		if podcast.Episodes[i].Status == models.EpisodeStatusPublished {
			podcast.Episodes[i].Status = models.EpisodeStatusArchived
			podcast.Episodes[i].PublishedAt = nil
		}
	}

	if err := s.podcasts.Save(ctx, podcast); err != nil {
		return nil, err
	}
	s.invalidatePodcast(ctx, podcast.ID)
	s.logger.WithPodcastID(podcast.ID).Info("podcast flagged")
	return podcast, nil
}

// UnflagPodcast clears the moderation flag. Prior PUBLISHED status is not
// restored; republishing is a separate explicit action by the owner.
func (s *Service) UnflagPodcast(ctx context.Context, admin *models.Account, podcastID string) (*models.Podcast, error) {
	if err := RequireRole(admin, models.RoleAdmin); err != nil {
		return nil, err
	}

	podcast, err := s.podcasts.GetByID(ctx, podcastID)
	if err != nil {
		return nil, err
	}
	if !podcast.Flagged {
		return nil, apperr.ErrPodcastNotFlagged
	}

	podcast.Flagged = false

	if err := s.podcasts.Save(ctx, podcast); err != nil {
		return nil, err
	}
	s.logger.WithPodcastID(podcast.ID).Info("podcast unflagged")
	return podcast, nil
}

// GetOwnedPodcast returns a podcast after the ownership check.
func (s *Service) GetOwnedPodcast(ctx context.Context, accountID, podcastID string) (*models.Podcast, error) {
	return s.ownedPodcast(ctx, accountID, podcastID)
}

// ListOwnedPodcasts returns every podcast owned by the account.
func (s *Service) ListOwnedPodcasts(ctx context.Context, accountID string) ([]models.Podcast, error) {
	return s.podcasts.ListByAccount(ctx, accountID)
}

func (s *Service) ownedPodcast(ctx context.Context, accountID, podcastID string) (*models.Podcast, error) {
	podcast, err := s.podcasts.GetByID(ctx, podcastID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(podcast, accountID); err != nil {
		return nil, err
	}
	return podcast, nil
}

// invalidatePodcast drops the cached public view. Invalidation failures
// are logged, never surfaced: the store is the source of truth and the
// cache entry expires on its own.
func (s *Service) invalidatePodcast(ctx context.Context, podcastID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePodcast(ctx, podcastID); err != nil {
		s.logger.WithPodcastID(podcastID).ErrorWithErr("failed to invalidate podcast cache", err)
	}
}

func (s *Service) invalidateProfile(ctx context.Context, accountID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteProfile(ctx, accountID); err != nil {
		s.logger.WithAccountID(accountID).ErrorWithErr("failed to invalidate profile cache", err)
	}
}
