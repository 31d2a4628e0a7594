// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureTenders(ctx, db); err != nil {
		problems = append(problems, "tenders: "+err.Error())
	}
	if err := ensureTeams(ctx, db); err != nil {
		problems = append(problems, "teams: "+err.Error())
	}
	if err := ensureCompanyProfiles(ctx, db); err != nil {
		problems = append(problems, "company_profiles: "+err.Error())
	}
	if err := ensureReadinessScores(ctx, db); err != nil {
		problems = append(problems, "readiness_scores: "+err.Error())
	}
	if err := ensureWorkspaceItems(ctx, db); err != nil {
		problems = append(problems, "workspace_items: "+err.Error())
	}
	if err := ensureDocumentSummaries(ctx, db); err != nil {
		problems = append(problems, "document_summaries: "+err.Error())
	}
	if err := ensureSummaryJobs(ctx, db); err != nil {
		problems = append(problems, "summary_jobs: "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))

		start := time.Now()
		zap.L().Info("ensuring index",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique))

		// 1) Load existing indexes
		existing := map[string]existingIndex{} // sig -> index
		cur, err := coll.Indexes().List(ctx)
		if err == nil {
			for cur.Next(ctx) {
				var idx existingIndex
				if err := cur.Decode(&idx); err != nil {
					zap.L().Warn("failed to decode existing index",
						zap.String("collection", coll.Name()),
						zap.Error(err))
					continue
				}
				existing[keySig(idx.Key)] = idx
			}
			cur.Close(ctx)
		}

		if ex, ok := existing[desiredSig]; ok {
			// Same key pattern exists already.
			if sameBoolPtr(desiredUnique, ex.Unique) {
				// Name alignment: if the name differs, drop & recreate with the desired name.
				if desiredName != "" && ex.Name != desiredName {
					if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
						errs = append(errs, fmt.Sprintf("%s(%s): rename drop failed: %v", coll.Name(), desiredName, err))
						continue
					}
					if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
						errs = append(errs, fmt.Sprintf("%s(%s): rename create failed: %v", coll.Name(), desiredName, err))
						continue
					}
					zap.L().Info("index renamed",
						zap.String("collection", coll.Name()),
						zap.String("name", desiredName),
						zap.String("took", time.Since(start).String()))
					continue
				}

				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig),
					zap.String("took", time.Since(start).String()))
				continue
			}

			// Options mismatch (e.g., upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
			if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
				if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
					errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
				} else {
					errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				}
				continue
			}
			zap.L().Info("index dropped and recreated",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("took", time.Since(start).String()))
			continue
		}

		// 2) No existing index with the same keys: create it.
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isOptionsConflictErr(err) {
				// Same keys under a different name slipped in between List and
				// CreateOne; treat it as reusable.
				zap.L().Info("reusing existing index (post-conflict)",
					zap.String("collection", coll.Name()),
					zap.String("keys", desiredSig),
					zap.String("took", time.Since(start).String()))
				continue
			}
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
				continue
			}
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		}
		zap.L().Info("index created",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

/* -------------------------------------------------------------------------- */
/* Per-collection index sets                                                  */
/* -------------------------------------------------------------------------- */

func ensureTenders(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("tenders"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "deadline", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("deadline_1")},
		},
		{
			Keys:    bson.D{{Key: "province", Value: 1}, {Key: "deadline", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("province_deadline")},
		},
		{
			Keys:    bson.D{{Key: "buyer", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("buyer_1")},
		},
	})
}

func ensureTeams(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("teams"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("uniq_name_ci"), Unique: boolPtr(true)},
		},
	})
}

func ensureCompanyProfiles(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("company_profiles"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("uniq_team_id"), Unique: boolPtr(true)},
		},
		{
			Keys:    bson.D{{Key: "industry_sector", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("industry_sector_1")},
		},
	})
}

func ensureReadinessScores(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("readiness_scores"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tender_id", Value: 1}, {Key: "team_id", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("uniq_tender_team"), Unique: boolPtr(true)},
		},
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("team_id_1")},
		},
	})
}

func ensureWorkspaceItems(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("workspace_items"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "tender_id", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("uniq_team_tender"), Unique: boolPtr(true)},
		},
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: &options.IndexOptions{Name: strPtr("team_created")},
		},
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "status", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("team_status")},
		},
	})
}

func ensureDocumentSummaries(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("document_summaries"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: &options.IndexOptions{Name: strPtr("team_created")},
		},
		{
			Keys:    bson.D{{Key: "tender_id", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("tender_id_1")},
		},
	})
}

func ensureSummaryJobs(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("summary_jobs"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("status_created")},
		},
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("team_id_1")},
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: &options.IndexOptions{Name: strPtr("timestamp_-1")},
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: &options.IndexOptions{Name: strPtr("category_timestamp")},
		},
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: &options.IndexOptions{Name: strPtr("team_timestamp")},
		},
	})
}
