package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	summarystore "github.com/tenderinsight/hub/internal/app/store/summaries"
	metastore "github.com/tenderinsight/hub/internal/app/store/tendermeta"
	tenderstore "github.com/tenderinsight/hub/internal/app/store/tenders"
	"github.com/tenderinsight/hub/internal/app/system/ingest"
	"github.com/tenderinsight/hub/internal/app/system/ocds"
)

var fetchFlags struct {
	mongoURI string
	mongoDB  string
	dsn      string
	ocdsURL  string
	from     string
	to       string
	lookback time.Duration
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Pull releases from the eTenders OCDS API into both stores",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to := fetchFlags.from, fetchFlags.to
		if from == "" {
			from = time.Now().UTC().Add(-fetchFlags.lookback).Format("2006-01-02")
		}
		if to == "" {
			to = time.Now().UTC().Format("2006-01-02")
		}

		db, closeMongo, err := connectMongo(cmd.Context(), fetchFlags.mongoURI, fetchFlags.mongoDB)
		if err != nil {
			return err
		}
		defer closeMongo()

		sql, err := connectSQL(fetchFlags.dsn)
		if err != nil {
			return err
		}
		meta := metastore.New(sql)
		if err := meta.Migrate(); err != nil {
			return fmt.Errorf("migrate tender_metadata: %w", err)
		}

		log := newLogger()
		defer log.Sync() //nolint:errcheck

		svc := ingest.New(ocds.New(fetchFlags.ocdsURL), tenderstore.New(db), meta, summarystore.New(db), nil, log)
		res, err := svc.SyncWindow(cmd.Context(), from, to)
		if err != nil {
			return err
		}
		fmt.Printf("fetched %d releases: %d upserted, %d skipped (%s to %s)\n",
			res.Fetched, res.Upserted, res.Skipped, from, to)
		return nil
	},
}

func init() {
	f := fetchCmd.Flags()
	f.StringVar(&fetchFlags.mongoURI, "mongo-uri", envOr("TENDERHUB_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	f.StringVar(&fetchFlags.mongoDB, "mongo-db", envOr("TENDERHUB_MONGO_DATABASE", "tenderhub"), "MongoDB database name")
	f.StringVar(&fetchFlags.dsn, "postgres-dsn", envOr("TENDERHUB_POSTGRES_DSN", ""), "Postgres DSN for the metadata table")
	f.StringVar(&fetchFlags.ocdsURL, "ocds-url", envOr("TENDERHUB_OCDS_BASE_URL", "https://ocds-api.etenders.gov.za"), "OCDS API base URL")
	f.StringVar(&fetchFlags.from, "from", "", "window start, YYYY-MM-DD (default: now minus --lookback)")
	f.StringVar(&fetchFlags.to, "to", "", "window end, YYYY-MM-DD (default: today)")
	f.DurationVar(&fetchFlags.lookback, "lookback", 7*24*time.Hour, "window length when --from is not given")
	rootCmd.AddCommand(fetchCmd)
}
