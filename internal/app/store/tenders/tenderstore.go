// internal/app/store/tenders/tenderstore.go
package tenderstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/tenderinsight/hub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("tender not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tenders")}
}

// Upsert inserts or replaces the full tender document. The _id is the
// OCDS tender id, so repeated syncs of the same release are idempotent.
// CreatedAt is preserved across replacements.
func (s *Store) Upsert(ctx context.Context, t models.Tender) (models.Tender, error) {
	if strings.TrimSpace(t.TenderID) == "" {
		return models.Tender{}, mongo.CommandError{Message: "tender_id is required"}
	}

	now := time.Now().UTC()
	t.TitleCI = text.Fold(t.Title)
	t.UpdatedAt = now

	var existing models.Tender
	err := s.c.FindOne(ctx, bson.M{"_id": t.TenderID}).Decode(&existing)
	switch {
	case err == nil:
		t.CreatedAt = existing.CreatedAt
		if t.Summary == "" {
			t.Summary = existing.Summary
		}
	case err == mongo.ErrNoDocuments:
		t.CreatedAt = now
	default:
		return models.Tender{}, err
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.c.ReplaceOne(ctx, bson.M{"_id": t.TenderID}, t, opts); err != nil {
		return models.Tender{}, err
	}
	return t, nil
}

// GetByID retrieves one tender by its OCDS id.
func (s *Store) GetByID(ctx context.Context, tenderID string) (models.Tender, error) {
	var t models.Tender
	err := s.c.FindOne(ctx, bson.M{"_id": tenderID}).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Tender{}, ErrNotFound
		}
		return models.Tender{}, err
	}
	return t, nil
}

// GetByIDs fetches tenders for the given ids, keyed by tender id.
func (s *Store) GetByIDs(ctx context.Context, ids []string) (map[string]models.Tender, error) {
	out := make(map[string]models.Tender, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var t models.Tender
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out[t.TenderID] = t
	}
	return out, cur.Err()
}

// SetSummary writes the generated summary onto the tender document.
func (s *Store) SetSummary(ctx context.Context, tenderID, summary string) error {
	res, err := s.c.UpdateByID(ctx, tenderID, bson.M{"$set": bson.M{
		"summary":    summary,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Find returns tenders matching the given filter.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Tender, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tenders []models.Tender
	if err := cur.All(ctx, &tenders); err != nil {
		return nil, err
	}
	return tenders, nil
}

// Count returns the number of tenders matching the filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// Aggregate runs an aggregation pipeline and decodes the results into out.
// The analytics feature builds its own pipelines; the store only owns the
// collection handle.
func (s *Store) Aggregate(ctx context.Context, pipeline []bson.M, out interface{}) error {
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

// Delete removes a tender by id. Used by the seed CLI when re-seeding.
func (s *Store) Delete(ctx context.Context, tenderID string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": tenderID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
