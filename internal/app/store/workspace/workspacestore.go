// internal/app/store/workspace/workspacestore.go
package workspacestore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"github.com/tenderinsight/hub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound          = errors.New("workspace item not found")
	ErrDuplicate         = errors.New("tender already in workspace")
	ErrInvalidStatus     = errors.New("unknown workspace status")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("workspace_items")}
}

// Add tracks a tender in a team's workspace. The unique index on
// (team_id, tender_id) prevents double-tracking.
func (s *Store) Add(ctx context.Context, item models.WorkspaceItem) (models.WorkspaceItem, error) {
	if item.Status == "" {
		item.Status = models.WorkspaceStatusPending
	}
	if !models.ValidWorkspaceStatus(item.Status) {
		return models.WorkspaceItem{}, ErrInvalidStatus
	}

	now := time.Now().UTC()
	item.ID = uuid.NewString()
	item.CreatedAt = now
	item.UpdatedAt = now
	for i := range item.Notes {
		item.Notes[i].CreatedAt = now
	}
	for i := range item.Tasks {
		if item.Tasks[i].Status == "" {
			item.Tasks[i].Status = models.TaskStatusPending
		}
		item.Tasks[i].CreatedAt = now
	}

	if _, err := s.c.InsertOne(ctx, item); err != nil {
		if wafflemongo.IsDup(err) {
			return models.WorkspaceItem{}, ErrDuplicate
		}
		return models.WorkspaceItem{}, err
	}
	return item, nil
}

// GetByID retrieves one workspace item.
func (s *Store) GetByID(ctx context.Context, id string) (models.WorkspaceItem, error) {
	var item models.WorkspaceItem
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.WorkspaceItem{}, ErrNotFound
		}
		return models.WorkspaceItem{}, err
	}
	return item, nil
}

// ByTeam returns a team's workspace items, newest first, optionally
// filtered by status.
func (s *Store) ByTeam(ctx context.Context, teamID, status string) ([]models.WorkspaceItem, error) {
	filter := bson.M{"team_id": teamID}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.WorkspaceItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus moves an item through the tracking lifecycle, enforcing
// valid transitions. updatedBy is recorded for the activity trail.
func (s *Store) UpdateStatus(ctx context.Context, id, newStatus, updatedBy string) (models.WorkspaceItem, error) {
	if !models.ValidWorkspaceStatus(newStatus) {
		return models.WorkspaceItem{}, ErrInvalidStatus
	}

	item, err := s.GetByID(ctx, id)
	if err != nil {
		return models.WorkspaceItem{}, err
	}
	if item.Status != newStatus && !models.WorkspaceTransitionAllowed(item.Status, newStatus) {
		return models.WorkspaceItem{}, ErrInvalidTransition
	}

	set := bson.M{
		"status":     newStatus,
		"updated_by": updatedBy,
		"updated_at": time.Now().UTC(),
	}
	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		return models.WorkspaceItem{}, err
	}
	return s.GetByID(ctx, id)
}

// AddNote appends a collaboration note. Content must be sanitized by the
// caller before it reaches the store.
func (s *Store) AddNote(ctx context.Context, id string, note models.TenderNote) (models.WorkspaceItem, error) {
	note.CreatedAt = time.Now().UTC()

	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"notes": note},
		"$set":  bson.M{"updated_at": note.CreatedAt},
	})
	if err != nil {
		return models.WorkspaceItem{}, err
	}
	if res.MatchedCount == 0 {
		return models.WorkspaceItem{}, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// AddTask appends a task to the item.
func (s *Store) AddTask(ctx context.Context, id string, task models.TenderTask) (models.WorkspaceItem, error) {
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if !models.ValidTaskStatus(task.Status) {
		return models.WorkspaceItem{}, ErrInvalidStatus
	}
	task.CreatedAt = time.Now().UTC()

	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"tasks": task},
		"$set":  bson.M{"updated_at": task.CreatedAt},
	})
	if err != nil {
		return models.WorkspaceItem{}, err
	}
	if res.MatchedCount == 0 {
		return models.WorkspaceItem{}, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete removes a workspace item.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
