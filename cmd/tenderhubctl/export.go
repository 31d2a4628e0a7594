package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	tenderstore "github.com/tenderinsight/hub/internal/app/store/tenders"
	"github.com/tenderinsight/hub/internal/app/system/csvutil"
)

var exportFlags struct {
	mongoURI string
	mongoDB  string
	out      string
	province string
	buyer    string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored tenders to a CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeMongo, err := connectMongo(cmd.Context(), exportFlags.mongoURI, exportFlags.mongoDB)
		if err != nil {
			return err
		}
		defer closeMongo()

		filter := bson.M{}
		if exportFlags.province != "" {
			filter["province"] = exportFlags.province
		}
		if exportFlags.buyer != "" {
			filter["buyer"] = exportFlags.buyer
		}

		tenders, err := tenderstore.New(db).Find(cmd.Context(), filter,
			options.Find().SetSort(bson.M{"_id": 1}).SetLimit(csvutil.MaxExportRows))
		if err != nil {
			return err
		}

		out := os.Stdout
		if exportFlags.out != "-" {
			f, err := os.Create(exportFlags.out)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		n, err := csvutil.WriteReleases(out, tenders)
		if err != nil {
			return err
		}
		if exportFlags.out != "-" {
			fmt.Printf("wrote %d rows to %s\n", n, exportFlags.out)
		}
		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.mongoURI, "mongo-uri", envOr("TENDERHUB_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	f.StringVar(&exportFlags.mongoDB, "mongo-db", envOr("TENDERHUB_MONGO_DATABASE", "tenderhub"), "MongoDB database name")
	f.StringVar(&exportFlags.out, "out", "-", "output file ('-' for stdout)")
	f.StringVar(&exportFlags.province, "province", "", "filter by province")
	f.StringVar(&exportFlags.buyer, "buyer", "", "filter by buyer")
	rootCmd.AddCommand(exportCmd)
}
