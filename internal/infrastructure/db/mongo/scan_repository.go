package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
)

const collectionScans = "scans"

// ScanRepository implements ports.ScanRepository using MongoDB.
type ScanRepository struct {
	col *mongo.Collection
}

func NewScanRepository(db *mongo.Database) *ScanRepository {
	return &ScanRepository{col: db.Collection(collectionScans)}
}

func (r *ScanRepository) Create(ctx context.Context, s *domain.Scan) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("%w: insert scan: %v", domain.ErrStorageFailure, err)
	}
	return nil
}

func (r *ScanRepository) FindByID(ctx context.Context, id string) (*domain.Scan, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Scan
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrScanNotFound
		}
		return nil, fmt.Errorf("%w: find scan: %v", domain.ErrStorageFailure, err)
	}
	return &s, nil
}

// UpdateStatus applies a status transition as a single conditional write.
// The filter excludes terminal scans, so a completed or failed scan can
// never be overwritten even when two workers race on the same id.
func (r *ScanRepository) UpdateStatus(ctx context.Context, id string, update ports.ScanStatusUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$nin": bson.A{domain.StatusCompleted, domain.StatusFailed}},
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": statusUpdateSet(update, time.Now().UTC())})
	if err != nil {
		return fmt.Errorf("%w: update scan status: %v", domain.ErrStorageFailure, err)
	}
	if res.MatchedCount == 0 {
		// Either the scan does not exist or it already reached a terminal
		// state. Distinguish the two for the caller.
		count, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("%w: verify scan: %v", domain.ErrStorageFailure, err)
		}
		if count == 0 {
			return domain.ErrScanNotFound
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

// statusUpdateSet builds the $set document for a status transition. A
// completed scan always records processing_time_ms, even when the elapsed
// time rounds down to zero.
func statusUpdateSet(update ports.ScanStatusUpdate, now time.Time) bson.M {
	set := bson.M{"status": update.Status}
	if update.ScanData != nil {
		set["scan_data"] = update.ScanData
	}
	if update.ErrorMessage != "" {
		set["error_message"] = update.ErrorMessage
	}
	if update.Status == domain.StatusCompleted {
		set["processing_time_ms"] = update.ProcessingTimeMS
	}
	if update.Status.Terminal() {
		set["completed_at"] = now
	}
	return set
}

func (r *ScanRepository) List(ctx context.Context, filter ports.ListScansFilter) ([]*domain.Scan, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{"user_id": filter.UserID}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: count scans: %v", domain.ErrStorageFailure, err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list scans: %v", domain.ErrStorageFailure, err)
	}
	defer cursor.Close(ctx)

	var scans []*domain.Scan
	if err := cursor.All(ctx, &scans); err != nil {
		return nil, 0, fmt.Errorf("%w: decode scans: %v", domain.ErrStorageFailure, err)
	}
	return scans, total, nil
}

// ClaimSessionScans transfers every unclaimed scan of sessionID to userID in a
// single bulk update. The user_id-unset condition makes repeats idempotent and
// session_id is deliberately left in place for audit.
func (r *ScanRepository) ClaimSessionScans(ctx context.Context, sessionID, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"session_id": sessionID,
		"user_id":    bson.M{"$exists": false},
	}
	res, err := r.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"user_id": userID}})
	if err != nil {
		return 0, fmt.Errorf("%w: claim session scans: %v", domain.ErrStorageFailure, err)
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes creates the indexes backing owner-scoped listing and claims.
func (r *ScanRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "session_id", Value: 1}}},
	})
	return err
}
