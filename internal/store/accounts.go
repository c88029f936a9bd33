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

// AccountStore is the document-store contract for accounts. Lookups that miss
// fail with the structured not-found error so services never see mongo errors.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	AdminExists(ctx context.Context) (bool, error)
	Save(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter AccountFilter, page, size int) ([]models.Account, int64, error)
}

// AccountFilter narrows admin account searches. Nil fields mean "any".
type AccountFilter struct {
	Role          models.Role
	Locked        *bool
	EmailVerified *bool
	Keyword       string
}

// AccountRepo is the MongoDB implementation of AccountStore.
type AccountRepo struct {
	collection *mongo.Collection
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &account, nil
}

func (r *AccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, fmt.Errorf("failed to count accounts by email: %w", err)
	}
	return count > 0, nil
}

func (r *AccountRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return false, fmt.Errorf("failed to count accounts by username: %w", err)
	}
	return count > 0, nil
}

func (r *AccountRepo) AdminExists(ctx context.Context) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"roles": models.RoleAdmin})
	if err != nil {
		return false, fmt.Errorf("failed to count admin accounts: %w", err)
	}
	return count > 0, nil
}

// Save inserts a new account or replaces an existing one. New accounts get a
// generated id and creation timestamp.
func (r *AccountRepo) Save(ctx context.Context, account *models.Account) error {
	now := time.Now().UTC()
	account.UpdatedAt = now

	if account.ID == "" {
		account.ID = uuid.New().String()
		account.CreatedAt = now
		if _, err := r.collection.InsertOne(ctx, account); err != nil {
			return fmt.Errorf("failed to insert account: %w", err)
		}
		return nil
	}

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": account.ID}, account)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// Search returns a page of accounts matching the filter, newest first, plus
// the total match count for pagination.
func (r *AccountRepo) Search(ctx context.Context, filter AccountFilter, page, size int) ([]models.Account, int64, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["roles"] = filter.Role
	}
	if filter.Locked != nil {
		query["locked"] = *filter.Locked
	}
	if filter.EmailVerified != nil {
		query["emailVerified"] = *filter.EmailVerified
	}
	if filter.Keyword != "" {
		pattern := regexp.QuoteMeta(filter.Keyword)
		query["$or"] = bson.A{
			bson.M{"username": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(page * size)).
		SetLimit(int64(size))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var accounts []models.Account
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, 0, fmt.Errorf("failed to decode accounts: %w", err)
	}
	return accounts, total, nil
}
