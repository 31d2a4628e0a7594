// internal/app/store/teams/teamstore.go
package teamstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"github.com/tenderinsight/hub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound      = errors.New("team not found")
	ErrDuplicateName = errors.New("a team with this name already exists")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("teams")}
}

// Create inserts a new team. New teams default to the free tier with a
// single seat.
func (s *Store) Create(ctx context.Context, t models.Team) (models.Team, error) {
	if strings.TrimSpace(t.Name) == "" {
		return models.Team{}, mongo.CommandError{Message: "name is required"}
	}
	if t.Tier == "" {
		t.Tier = models.TierFree
	}
	if !models.ValidTier(t.Tier) {
		return models.Team{}, mongo.CommandError{Message: "tier must be 'free', 'basic', or 'pro'"}
	}
	if t.SeatCount <= 0 {
		t.SeatCount = 1
	}

	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.NameCI = text.Fold(t.Name)
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Team{}, ErrDuplicateName
		}
		return models.Team{}, err
	}
	return t, nil
}

// GetByID retrieves a team.
func (s *Store) GetByID(ctx context.Context, id string) (models.Team, error) {
	var t models.Team
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Team{}, ErrNotFound
		}
		return models.Team{}, err
	}
	return t, nil
}

// SetTier changes a team's subscription tier.
func (s *Store) SetTier(ctx context.Context, id, tier string) error {
	if !models.ValidTier(tier) {
		return mongo.CommandError{Message: "tier must be 'free', 'basic', or 'pro'"}
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"tier":       tier,
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
