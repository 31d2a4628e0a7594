// internal/app/store/tendermeta/metastore.go
package metastore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tenderinsight/hub/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store manages the structured tender_metadata table in Postgres.
// Search filters run here; the full documents live in the tenders
// MongoDB collection.
type Store struct {
	db *gorm.DB
}

var ErrNotFound = errors.New("tender metadata not found")

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the tender_metadata table.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&models.TenderMetadata{})
}

// Upsert inserts or updates the metadata row keyed by tender_id.
func (s *Store) Upsert(ctx context.Context, m models.TenderMetadata) (models.TenderMetadata, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tender_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "buyer", "province", "budget_min", "budget_max", "deadline",
		}),
	}).Create(&m).Error
	if err != nil {
		return models.TenderMetadata{}, err
	}
	return m, nil
}

// GetByTenderID retrieves one metadata row.
func (s *Store) GetByTenderID(ctx context.Context, tenderID string) (models.TenderMetadata, error) {
	var m models.TenderMetadata
	err := s.db.WithContext(ctx).Where("tender_id = ?", tenderID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TenderMetadata{}, ErrNotFound
		}
		return models.TenderMetadata{}, err
	}
	return m, nil
}

// Filter describes the structured search constraints. Zero values mean
// "no constraint". Budget matching is by range overlap.
type Filter struct {
	Province     string
	Buyer        string
	MinBudget    *float64
	MaxBudget    *float64
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time
	Limit        int
}

// Find returns metadata rows matching the filter.
func (s *Store) Find(ctx context.Context, f Filter) ([]models.TenderMetadata, error) {
	q := s.db.WithContext(ctx).Model(&models.TenderMetadata{})

	if f.Province != "" {
		q = q.Where("province = ?", f.Province)
	}
	if f.Buyer != "" {
		q = q.Where("buyer = ?", f.Buyer)
	}
	if f.MinBudget != nil {
		q = q.Where("budget_max >= ?", *f.MinBudget)
	}
	if f.MaxBudget != nil {
		q = q.Where("budget_min <= ?", *f.MaxBudget)
	}
	if f.DeadlineFrom != nil {
		q = q.Where("deadline >= ?", *f.DeadlineFrom)
	}
	if f.DeadlineTo != nil {
		q = q.Where("deadline <= ?", *f.DeadlineTo)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []models.TenderMetadata
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FilterOptions holds the distinct values and ranges available for
// building search filter UIs.
type FilterOptions struct {
	Provinces        []string   `json:"provinces"`
	Buyers           []string   `json:"buyers"`
	BudgetMin        *float64   `json:"budget_min"`
	BudgetMax        *float64   `json:"budget_max"`
	EarliestDeadline *time.Time `json:"earliest_deadline"`
	LatestDeadline   *time.Time `json:"latest_deadline"`
}

// Options computes the available filter options across all metadata rows.
func (s *Store) Options(ctx context.Context) (FilterOptions, error) {
	var opts FilterOptions
	db := s.db.WithContext(ctx).Model(&models.TenderMetadata{})

	if err := db.Distinct("province").Where("province <> ''").Pluck("province", &opts.Provinces).Error; err != nil {
		return FilterOptions{}, err
	}
	if err := s.db.WithContext(ctx).Model(&models.TenderMetadata{}).
		Distinct("buyer").Where("buyer <> ''").Pluck("buyer", &opts.Buyers).Error; err != nil {
		return FilterOptions{}, err
	}

	type ranges struct {
		MinBudget        *float64
		MaxBudget        *float64
		EarliestDeadline *time.Time
		LatestDeadline   *time.Time
	}
	var r ranges
	err := s.db.WithContext(ctx).Model(&models.TenderMetadata{}).
		Select("MIN(budget_min) AS min_budget, MAX(budget_max) AS max_budget, " +
			"MIN(deadline) AS earliest_deadline, MAX(deadline) AS latest_deadline").
		Scan(&r).Error
	if err != nil {
		return FilterOptions{}, err
	}
	opts.BudgetMin = r.MinBudget
	opts.BudgetMax = r.MaxBudget
	opts.EarliestDeadline = r.EarliestDeadline
	opts.LatestDeadline = r.LatestDeadline
	return opts, nil
}

// Count returns the total number of metadata rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.TenderMetadata{}).Count(&n).Error
	return n, err
}
