package content

import (
	"context"

	"github.com/berlinbruno/podpirate/internal/logging"
	"github.com/berlinbruno/podpirate/internal/metrics"
	"github.com/berlinbruno/podpirate/internal/store"
	"github.com/berlinbruno/podpirate/pkg/models"
)

// DiscoveryCache is the read-through cache used by the public surface.
// The Redis cache satisfies this; a nil cache disables caching.
type DiscoveryCache interface {
	GetPodcast(ctx context.Context, podcastID string) (*models.Podcast, error)
	SetPodcast(ctx context.Context, podcast *models.Podcast) error
	GetProfile(ctx context.Context, accountID string) (*models.CreatorProfile, error)
	SetProfile(ctx context.Context, profile *models.CreatorProfile) error
}

// Discovery serves the unauthenticated public surface: published podcasts,
// their published episodes and creator profiles. Reads go through the
// cache; cache failures fall back to the store.
type Discovery struct {
	podcasts store.PodcastStore
	accounts store.AccountStore
	cache    DiscoveryCache
	logger   *logging.Logger
}

// NewDiscovery creates the public discovery service. cache may be nil.
func NewDiscovery(podcasts store.PodcastStore, accounts store.AccountStore, cache DiscoveryCache, logger *logging.Logger) *Discovery {
	return &Discovery{podcasts: podcasts, accounts: accounts, cache: cache, logger: logger}
}

// GetPodcast returns a published podcast with only its published episodes.
// Draft and archived podcasts are invisible here.
func (d *Discovery) GetPodcast(ctx context.Context, podcastID string) (*models.Podcast, error) {
	if d.cache != nil {
		cached, err := d.cache.GetPodcast(ctx, podcastID)
		if err != nil {
			d.logger.WithPodcastID(podcastID).ErrorWithErr("podcast cache read failed", err)
		} else if cached != nil {
			metrics.RecordCacheLookup("podcast", "hit")
			return cached, nil
		}
		metrics.RecordCacheLookup("podcast", "miss")
	}

	podcast, err := d.podcasts.GetPublishedByID(ctx, podcastID)
	if err != nil {
		return nil, err
	}
	podcast.Episodes = publishedEpisodes(podcast.Episodes)

	if d.cache != nil {
		if err := d.cache.SetPodcast(ctx, podcast); err != nil {
			d.logger.WithPodcastID(podcastID).ErrorWithErr("podcast cache write failed", err)
		}
	}
	return podcast, nil
}

// Search returns a page of published podcasts matching an optional
// category and title keyword, newest first.
func (d *Discovery) Search(ctx context.Context, category, keyword string, page, size int) ([]models.Podcast, int64, error) {
	filter := store.PodcastFilter{
		Status:   models.PodcastStatusPublished,
		Category: category,
		Keyword:  keyword,
	}
	podcasts, total, err := d.podcasts.Search(ctx, filter, page, size)
	if err != nil {
		return nil, 0, err
	}
	for i := range podcasts {
		podcasts[i].Episodes = publishedEpisodes(podcasts[i].Episodes)
	}
	return podcasts, total, nil
}

// CreatorProfile returns the public view of a creator account. Private
// account fields never cross this boundary.
func (d *Discovery) CreatorProfile(ctx context.Context, accountID string) (*models.CreatorProfile, error) {
	if d.cache != nil {
		cached, err := d.cache.GetProfile(ctx, accountID)
		if err != nil {
			d.logger.WithAccountID(accountID).ErrorWithErr("profile cache read failed", err)
		} else if cached != nil {
			metrics.RecordCacheLookup("profile", "hit")
			return cached, nil
		}
		metrics.RecordCacheLookup("profile", "miss")
	}

	account, err := d.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	count, err := d.podcasts.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	profile := account.PublicProfile(count)

	if d.cache != nil {
		if err := d.cache.SetProfile(ctx, profile); err != nil {
			d.logger.WithAccountID(accountID).ErrorWithErr("profile cache write failed", err)
		}
	}
	return profile, nil
}

// CreatorPodcasts returns a page of the creator's published podcasts.
func (d *Discovery) CreatorPodcasts(ctx context.Context, accountID string, page, size int) ([]models.Podcast, int64, error) {
	filter := store.PodcastFilter{
		AccountID: accountID,
		Status:    models.PodcastStatusPublished,
	}
	podcasts, total, err := d.podcasts.Search(ctx, filter, page, size)
	if err != nil {
		return nil, 0, err
	}
	for i := range podcasts {
		podcasts[i].Episodes = publishedEpisodes(podcasts[i].Episodes)
	}
	return podcasts, total, nil
}

func publishedEpisodes(episodes []models.Episode) []models.Episode {
	out := make([]models.Episode, 0, len(episodes))
	for _, e := range episodes {
		if e.Status == models.EpisodeStatusPublished {
			out = append(out, e)
		}
	}
	return out
}
