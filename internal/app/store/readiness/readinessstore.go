// internal/app/store/readiness/readinessstore.go
package readinessstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tenderinsight/hub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("readiness score not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("readiness_scores")}
}

// Save stores an assessment, replacing any previous score for the same
// (tender, team) pair so re-checks after a profile update take effect.
func (s *Store) Save(ctx context.Context, rs models.ReadinessScore) (models.ReadinessScore, error) {
	if rs.ID == "" {
		rs.ID = uuid.NewString()
	}
	rs.CreatedAt = time.Now().UTC()

	filter := bson.M{"tender_id": rs.TenderID, "team_id": rs.TeamID}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.c.ReplaceOne(ctx, filter, rs, opts); err != nil {
		return models.ReadinessScore{}, err
	}
	return rs, nil
}

// Get retrieves the stored score for one tender/team pair.
func (s *Store) Get(ctx context.Context, tenderID, teamID string) (models.ReadinessScore, error) {
	var rs models.ReadinessScore
	err := s.c.FindOne(ctx, bson.M{"tender_id": tenderID, "team_id": teamID}).Decode(&rs)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.ReadinessScore{}, ErrNotFound
		}
		return models.ReadinessScore{}, err
	}
	return rs, nil
}

// ByTeam returns all stored scores for a team, keyed by tender id. The
// workspace list and analytics enrichment both consume this map.
func (s *Store) ByTeam(ctx context.Context, teamID string) (map[string]models.ReadinessScore, error) {
	cur, err := s.c.Find(ctx, bson.M{"team_id": teamID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[string]models.ReadinessScore)
	for cur.Next(ctx) {
		var rs models.ReadinessScore
		if err := cur.Decode(&rs); err != nil {
			return nil, err
		}
		out[rs.TenderID] = rs
	}
	return out, cur.Err()
}
