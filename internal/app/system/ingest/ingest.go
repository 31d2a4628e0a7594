// Package ingest pulls OCDS releases from the eTenders API and lands
// them in both stores: the full document in MongoDB, the filterable
// metadata row in Postgres. The same upsert path serves the periodic
// sync worker, the push endpoint, and the CLI.
package ingest

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/tenderinsight/hub/internal/app/store/summaries"
	"github.com/tenderinsight/hub/internal/app/store/tendermeta"
	"github.com/tenderinsight/hub/internal/app/store/tenders"
	"github.com/tenderinsight/hub/internal/app/system/auditlog"
	"github.com/tenderinsight/hub/internal/app/system/ocds"
	"github.com/tenderinsight/hub/internal/domain/models"
)

type Service struct {
	client  *ocds.Client
	tenders *tenderstore.Store
	meta    *metastore.Store
	queue   *summarystore.Store
	audit   *auditlog.Logger
	log     *zap.Logger
}

// New builds the ingest service. queue may be nil; when set, freshly
// landed tenders with a description and no summary are queued for the
// background summarizer.
func New(client *ocds.Client, tenders *tenderstore.Store, meta *metastore.Store, queue *summarystore.Store, audit *auditlog.Logger, log *zap.Logger) *Service {
	return &Service{
		client:  client,
		tenders: tenders,
		meta:    meta,
		queue:   queue,
		audit:   audit,
		log:     log,
	}
}

// Result summarizes one sync sweep.
type Result struct {
	Fetched  int `json:"fetched"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
}

// SyncWindow pulls every release in the [dateFrom, dateTo] window
// (YYYY-MM-DD, either may be empty) and upserts each into both stores.
// Releases that cannot be parsed are counted as skipped, not fatal.
func (s *Service) SyncWindow(ctx context.Context, dateFrom, dateTo string) (Result, error) {
	var res Result
	q := ocds.Query{PageNumber: 1, PageSize: 50, DateFrom: dateFrom, DateTo: dateTo}

	for {
		page, err := s.client.Fetch(ctx, q)
		if err != nil {
			s.audit.SyncRunFailed(ctx, err.Error())
			return res, fmt.Errorf("ingest: fetch page %d: %w", q.PageNumber, err)
		}

		res.Fetched += len(page.Releases)
		for _, release := range page.Releases {
			if _, err := s.UpsertRelease(ctx, release); err != nil {
				if err == errUnparseable {
					res.Skipped++
					continue
				}
				s.audit.SyncRunFailed(ctx, err.Error())
				return res, err
			}
			res.Upserted++
		}

		if !page.HasNext(q) {
			break
		}
		q.PageNumber++
	}

	s.audit.SyncRunCompleted(ctx, res.Fetched, res.Upserted)
	s.log.Info("sync sweep finished",
		zap.Int("fetched", res.Fetched),
		zap.Int("upserted", res.Upserted),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

var errUnparseable = fmt.Errorf("release missing tender id")

// UpsertRelease parses one raw OCDS release and writes it to both
// stores. The MongoDB write is authoritative; a Postgres failure after
// a Mongo success is returned so the sweep surfaces the divergence.
func (s *Service) UpsertRelease(ctx context.Context, release gjson.Result) (models.Tender, error) {
	t, ok := ocds.ParseRelease(release)
	if !ok {
		return models.Tender{}, errUnparseable
	}

	saved, err := s.tenders.Upsert(ctx, t)
	if err != nil {
		return models.Tender{}, fmt.Errorf("ingest: upsert tender %s: %w", t.TenderID, err)
	}

	if _, err := s.meta.Upsert(ctx, ocds.Metadata(saved)); err != nil {
		return saved, fmt.Errorf("ingest: upsert metadata %s: %w", t.TenderID, err)
	}

	if s.queue != nil && saved.Summary == "" && saved.Description != "" {
		if _, err := s.queue.EnqueueJob(ctx, saved.TenderID); err != nil {
			// Non-fatal: the next sweep retries the enqueue.
			s.log.Warn("enqueue summary job failed",
				zap.String("tender_id", saved.TenderID),
				zap.Error(err))
		}
	}

	s.audit.TenderUpserted(ctx, saved.TenderID, "ocds")
	return saved, nil
}

// IsUnparseable reports whether err marks a release that had no usable
// tender id.
func IsUnparseable(err error) bool { return err == errUnparseable }

// ReleasesFromJSON extracts the release array from a pushed payload.
// Both a bare array and an object carrying a "releases" array are
// accepted. Returns false when neither shape is present.
func ReleasesFromJSON(raw []byte) ([]gjson.Result, bool) {
	root := gjson.ParseBytes(raw)
	if root.IsArray() {
		return root.Array(), true
	}
	if releases := root.Get("releases"); releases.IsArray() {
		return releases.Array(), true
	}
	return nil, false
}
