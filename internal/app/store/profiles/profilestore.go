// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"github.com/tenderinsight/hub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound  = errors.New("company profile not found")
	ErrDuplicate = errors.New("a profile already exists for this team")
	ErrInvalid   = errors.New("invalid company profile")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("company_profiles")}
}

// Create inserts a new company profile for a team. A team has at most
// one profile; the unique index on team_id enforces that.
func (s *Store) Create(ctx context.Context, p models.CompanyProfile) (models.CompanyProfile, error) {
	if err := validate(p); err != nil {
		return models.CompanyProfile{}, err
	}

	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.CompanyProfile{}, ErrDuplicate
		}
		return models.CompanyProfile{}, err
	}
	return p, nil
}

// GetByTeam retrieves the profile for a team.
func (s *Store) GetByTeam(ctx context.Context, teamID string) (models.CompanyProfile, error) {
	var p models.CompanyProfile
	err := s.c.FindOne(ctx, bson.M{"team_id": teamID}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.CompanyProfile{}, ErrNotFound
		}
		return models.CompanyProfile{}, err
	}
	return p, nil
}

// Update replaces the mutable fields of a team's profile and refreshes
// UpdatedAt. ID, TeamID, and CreatedAt are never changed.
func (s *Store) Update(ctx context.Context, teamID string, p models.CompanyProfile) (models.CompanyProfile, error) {
	if err := validate(p); err != nil {
		return models.CompanyProfile{}, err
	}

	set := bson.M{
		"industry_sector":             p.IndustrySector,
		"services_provided":           p.ServicesProvided,
		"certifications":              p.Certifications,
		"geographic_coverage":         p.GeographicCoverage,
		"years_experience":            p.YearsExperience,
		"contact_email":               p.ContactEmail,
		"contact_phone":               p.ContactPhone,
		"website":                     p.Website,
		"bbbee_level":                 p.BBBEELevel,
		"cidb_grade":                  p.CIDBGrade,
		"company_size":                p.CompanySize,
		"company_registration_number": p.CompanyRegistrationNumber,
		"updated_at":                  time.Now().UTC(),
	}

	res := s.c.FindOneAndUpdate(ctx, bson.M{"team_id": teamID}, bson.M{"$set": set})
	if err := res.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.CompanyProfile{}, ErrNotFound
		}
		return models.CompanyProfile{}, err
	}
	return s.GetByTeam(ctx, teamID)
}

// Delete removes a team's profile.
func (s *Store) Delete(ctx context.Context, teamID string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"team_id": teamID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func validate(p models.CompanyProfile) error {
	if strings.TrimSpace(p.TeamID) == "" {
		return fmt.Errorf("%w: team_id is required", ErrInvalid)
	}
	if strings.TrimSpace(p.IndustrySector) == "" {
		return fmt.Errorf("%w: industry_sector is required", ErrInvalid)
	}
	if strings.TrimSpace(p.ContactEmail) == "" || !strings.Contains(p.ContactEmail, "@") {
		return fmt.Errorf("%w: contact_email must be a valid email address", ErrInvalid)
	}
	if p.YearsExperience < 0 {
		return fmt.Errorf("%w: years_experience cannot be negative", ErrInvalid)
	}
	return nil
}
