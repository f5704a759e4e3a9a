package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sitelens/scan-engine/internal/core/domain"
)

const collectionWebsites = "websites"

// WebsiteRepository implements ports.WebsiteRepository using MongoDB.
type WebsiteRepository struct {
	col *mongo.Collection
}

func NewWebsiteRepository(db *mongo.Database) *WebsiteRepository {
	return &WebsiteRepository{col: db.Collection(collectionWebsites)}
}

// FindOrCreate returns the website for url, inserting it on first sight.
// Concurrent first-sight inserts for the same URL can race; the unique url
// index turns the loser into a re-read of the winner's document.
func (r *WebsiteRepository) FindOrCreate(ctx context.Context, url, domainName string) (*domain.Website, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var existing domain.Website
	err := r.col.FindOne(ctx, bson.M{"url": url}).Decode(&existing)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: find website: %v", domain.ErrStorageFailure, err)
	}

	website := &domain.Website{
		ID:        uuid.NewString(),
		URL:       url,
		Domain:    domainName,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, website); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			var winner domain.Website
			if err := r.col.FindOne(ctx, bson.M{"url": url}).Decode(&winner); err == nil {
				return &winner, nil
			}
		}
		return nil, fmt.Errorf("%w: insert website: %v", domain.ErrStorageFailure, err)
	}
	return website, nil
}

func (r *WebsiteRepository) FindByID(ctx context.Context, id string) (*domain.Website, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var w domain.Website
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&w); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrScanNotFound
		}
		return nil, fmt.Errorf("%w: find website: %v", domain.ErrStorageFailure, err)
	}
	return &w, nil
}

// EnsureIndexes creates necessary indexes on the websites collection.
func (r *WebsiteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
