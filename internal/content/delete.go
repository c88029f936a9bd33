package content

import (
	"context"

	"github.com/berlinbruno/podpirate/pkg/models"
)

// Cascading deletion runs leaf-first: blobs before documents, episodes
// before podcasts, podcasts before accounts. The store has no
// cross-document transactions, so a failure partway through leaves only
// orphaned leaf state behind, never a dangling parent reference. Blob
// deletion is idempotent, which makes the whole cascade retry-safe.

// DeleteEpisode removes the episode at index from an owned podcast,
// releasing its blobs first. Indices of later episodes shift down by one.
// When the list becomes empty the podcast drops to DRAFT, unless it is
// ARCHIVED, which it stays.
func (s *Service) DeleteEpisode(ctx context.Context, accountID, podcastID string, index int) (*models.Podcast, error) {
	podcast, err := s.ownedPodcast(ctx, accountID, podcastID)
	if err != nil {
		return nil, err
	}
	return s.deleteEpisodeAt(ctx, podcast, index)
}

// AdminDeleteEpisode is the moderation variant of DeleteEpisode; it skips
// the ownership check.
func (s *Service) AdminDeleteEpisode(ctx context.Context, admin *models.Account, podcastID string, index int) (*models.Podcast, error) {
	if err := RequireRole(admin, models.RoleAdmin); err != nil {
		return nil, err
	}
	podcast, err := s.podcasts.GetByID(ctx, podcastID)
	if err != nil {
		return nil, err
	}
	return s.deleteEpisodeAt(ctx, podcast, index)
}

func (s *Service) deleteEpisodeAt(ctx context.Context, podcast *models.Podcast, index int) (*models.Podcast, error) {
	episode, err := episodeAt(podcast, index)
	if err != nil {
		return nil, err
	}

	if err := s.releaseEpisodeBlobs(ctx, episode); err != nil {
		return nil, err
	}

	podcast.Episodes = append(podcast.Episodes[:index], podcast.Episodes[index+1:]...)
	if len(podcast.Episodes) == 0 && podcast.Status != models.PodcastStatusArchived {
		podcast.Status = models.PodcastStatusDraft
		podcast.PublishedAt = nil
	}

	if err := s.podcasts.Save(ctx, podcast); err != nil {
		return nil, err
	}
	s.invalidatePodcast(ctx, podcast.ID)
	return podcast, nil
}

// DeletePodcast removes an owned podcast and everything it owns.
func (s *Service) DeletePodcast(ctx context.Context, accountID, podcastID string) error {
	podcast, err := s.ownedPodcast(ctx, accountID, podcastID)
	if err != nil {
		return err
	}
	return s.cascadePodcast(ctx, podcast)
}

// AdminDeletePodcast is the moderation variant of DeletePodcast.
func (s *Service) AdminDeletePodcast(ctx context.Context, admin *models.Account, podcastID string) error {
	if err := RequireRole(admin, models.RoleAdmin); err != nil {
		return err
	}
	podcast, err := s.podcasts.GetByID(ctx, podcastID)
	if err != nil {
		return err
	}
	return s.cascadePodcast(ctx, podcast)
}

func (s *Service) cascadePodcast(ctx context.Context, podcast *models.Podcast) error {
	for i := range podcast.Episodes {
		if err := s.releaseEpisodeBlobs(ctx, &podcast.Episodes[i]); err != nil {
			return err
		}
	}
	if err := s.media.DeleteIfSet(ctx, podcast.CoverPath); err != nil {
		return err
	}
	if err := s.media.DeleteIfSet(ctx, podcast.BannerPath); err != nil {
		return err
	}
	if err := s.podcasts.Delete(ctx, podcast.ID); err != nil {
		return err
	}
	s.invalidatePodcast(ctx, podcast.ID)
	s.logger.WithPodcastID(podcast.ID).Info("podcast deleted")
	return nil
}

// DeleteAccount cascades through every podcast the account owns, releases
// the profile image and removes the account document. Callers must have
// already re-authenticated the actor.
func (s *Service) DeleteAccount(ctx context.Context, accountID string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	podcasts, err := s.podcasts.ListByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	for i := range podcasts {
		if err := s.cascadePodcast(ctx, &podcasts[i]); err != nil {
			return err
		}
	}

	if err := s.media.DeleteIfSet(ctx, account.ProfilePath); err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, account.ID); err != nil {
		return err
	}
	s.invalidateProfile(ctx, account.ID)
	s.logger.WithAccountID(account.ID).Info("account deleted")
	return nil
}

// AdminDeleteAccount is the moderation variant of DeleteAccount.
func (s *Service) AdminDeleteAccount(ctx context.Context, admin *models.Account, accountID string) error {
	if err := RequireRole(admin, models.RoleAdmin); err != nil {
		return err
	}
	return s.DeleteAccount(ctx, accountID)
}

func (s *Service) releaseEpisodeBlobs(ctx context.Context, episode *models.Episode) error {
	if err := s.media.DeleteIfSet(ctx, episode.AudioPath); err != nil {
		return err
	}
	return s.media.DeleteIfSet(ctx, episode.ImagePath)
}
