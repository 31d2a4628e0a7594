package main

import (
	"fmt"

	"github.com/spf13/cobra"

	teamstore "github.com/tenderinsight/hub/internal/app/store/teams"
	"github.com/tenderinsight/hub/internal/domain/models"
)

var seedFlags struct {
	mongoURI string
	mongoDB  string
	name     string
	tier     string
	seats    int
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a team directly in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedFlags.name == "" {
			return fmt.Errorf("--name is required")
		}
		if !models.ValidTier(seedFlags.tier) {
			return fmt.Errorf("--tier must be 'free', 'basic', or 'pro'")
		}

		db, closeMongo, err := connectMongo(cmd.Context(), seedFlags.mongoURI, seedFlags.mongoDB)
		if err != nil {
			return err
		}
		defer closeMongo()

		team, err := teamstore.New(db).Create(cmd.Context(), models.Team{
			Name:      seedFlags.name,
			Tier:      seedFlags.tier,
			SeatCount: seedFlags.seats,
		})
		if err != nil {
			return err
		}
		fmt.Printf("created team %s (%s, %s tier, %d seats)\n", team.ID, team.Name, team.Tier, team.SeatCount)
		return nil
	},
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedFlags.mongoURI, "mongo-uri", envOr("TENDERHUB_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	f.StringVar(&seedFlags.mongoDB, "mongo-db", envOr("TENDERHUB_MONGO_DATABASE", "tenderhub"), "MongoDB database name")
	f.StringVar(&seedFlags.name, "name", "", "team name")
	f.StringVar(&seedFlags.tier, "tier", models.TierFree, "subscription tier: free, basic, or pro")
	f.IntVar(&seedFlags.seats, "seats", 0, "seat count (0 uses the tier default)")
	rootCmd.AddCommand(seedCmd)
}
