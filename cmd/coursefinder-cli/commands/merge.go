package commands

import (
	"log/slog"

	"coursefinder-backend/lib/scrapers/dvc"
	"coursefinder-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	mergeDir *string
	mergeOut *string
)

func init() {
	mergeDir = mergeCmd.Flags().String("dir", "parsed", "The directory of per-course JSON files.")
	mergeOut = mergeCmd.Flags().String("out", "catalog.json", "The combined catalog to write.")
	rootCmd.AddCommand(mergeCmd)
}

var mergeCmd = &cobra.Command{
	Use:   "merge [--dir <parsed>] [--out <catalog.json>]",
	Short: "Merges per-course JSON files into one catalog.",
	Run: func(cmd *cobra.Command, args []string) {
		courses, err := dvc.MergeDir(*mergeDir)
		if err != nil {
			serviceutil.Fatal("merge catalog", err)
		}
		err = dvc.WriteCatalog(*mergeOut, courses)
		if err != nil {
			serviceutil.Fatal("write catalog", err)
		}
		slog.Info("wrote catalog", "courses", len(courses), "path", *mergeOut)
	},
}
