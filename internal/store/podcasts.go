package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/berlinbruno/podpirate/internal/apperr"
	"github.com/berlinbruno/podpirate/pkg/models"
)

// PodcastStore is the document-store contract for podcasts. Episodes live
// inside the podcast document, so episode mutations go through Save on the
// whole document; the per-document write is the atomicity unit.
type PodcastStore interface {
	GetByID(ctx context.Context, id string) (*models.Podcast, error)
	GetPublishedByID(ctx context.Context, id string) (*models.Podcast, error)
	ListByAccount(ctx context.Context, accountID string) ([]models.Podcast, error)
	CountByAccount(ctx context.Context, accountID string) (int64, error)
	Save(ctx context.Context, podcast *models.Podcast) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter PodcastFilter, page, size int) ([]models.Podcast, int64, error)
}

// PodcastFilter narrows podcast searches. Nil/zero fields mean "any". The
// FLAGGED pseudo-status is expressed via Flagged, not Status.
type PodcastFilter struct {
	AccountID string
	Category  string
	Flagged   *bool
	Status    models.PodcastStatus
	Keyword   string
}

// PodcastRepo is the MongoDB implementation of PodcastStore.
type PodcastRepo struct {
	collection *mongo.Collection
}

func (r *PodcastRepo) GetByID(ctx context.Context, id string) (*models.Podcast, error) {
	var podcast models.Podcast
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&podcast)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.ErrPodcastNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get podcast: %w", err)
	}
	return &podcast, nil
}

func (r *PodcastRepo) GetPublishedByID(ctx context.Context, id string) (*models.Podcast, error) {
	var podcast models.Podcast
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "status": models.PodcastStatusPublished}).Decode(&podcast)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.ErrPodcastNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get published podcast: %w", err)
	}
	return &podcast, nil
}

func (r *PodcastRepo) ListByAccount(ctx context.Context, accountID string) ([]models.Podcast, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"accountId": accountID})
	if err != nil {
		return nil, fmt.Errorf("failed to list podcasts: %w", err)
	}
	defer cursor.Close(ctx)

	var podcasts []models.Podcast
	if err := cursor.All(ctx, &podcasts); err != nil {
		return nil, fmt.Errorf("failed to decode podcasts: %w", err)
	}
	return podcasts, nil
}

func (r *PodcastRepo) CountByAccount(ctx context.Context, accountID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"accountId": accountID})
	if err != nil {
		return 0, fmt.Errorf("failed to count podcasts: %w", err)
	}
	return count, nil
}

// Save inserts a new podcast or replaces an existing one in a single
// per-document write.
func (r *PodcastRepo) Save(ctx context.Context, podcast *models.Podcast) error {
	now := time.Now().UTC()
	podcast.UpdatedAt = now

	if podcast.ID == "" {
		podcast.ID = uuid.New().String()
		podcast.CreatedAt = now
		if _, err := r.collection.InsertOne(ctx, podcast); err != nil {
			return fmt.Errorf("failed to insert podcast: %w", err)
		}
		return nil
	}

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": podcast.ID}, podcast)
	if err != nil {
		return fmt.Errorf("failed to save podcast: %w", err)
	}
	return nil
}

func (r *PodcastRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete podcast: %w", err)
	}
	return nil
}

// Search returns a page of podcasts matching the filter, newest first, plus
// the total match count.
func (r *PodcastRepo) Search(ctx context.Context, filter PodcastFilter, page, size int) ([]models.Podcast, int64, error) {
	query := bson.M{}
	if filter.AccountID != "" {
		query["accountId"] = filter.AccountID
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Flagged != nil {
		query["flagged"] = *filter.Flagged
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Keyword != "" {
		pattern := regexp.QuoteMeta(filter.Keyword)
		query["title"] = bson.M{"$regex": pattern, "$options": "i"}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count podcasts: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(page * size)).
		SetLimit(int64(size))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search podcasts: %w", err)
	}
	defer cursor.Close(ctx)

	var podcasts []models.Podcast
	if err := cursor.All(ctx, &podcasts); err != nil {
		return nil, 0, fmt.Errorf("failed to decode podcasts: %w", err)
	}
	return podcasts, total, nil
}
