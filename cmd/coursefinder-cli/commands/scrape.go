package commands

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"coursefinder-backend/lib/scrapers/dvc"
	"coursefinder-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	scrapeBaseUrl *string
	scrapeTerm    *string
	scrapeOut     *string
)

func init() {
	scrapeBaseUrl = scrapeCmd.Flags().String("base-url", "https://www.dvc.edu", "The course search site to scrape.")
	scrapeTerm = scrapeCmd.Flags().String("term", "", "The term to scrape, e.g. '2026SP'.")
	scrapeOut = scrapeCmd.Flags().String("out", "parsed", "The directory to write per-course JSON into.")
	scrapeCmd.MarkFlagRequired("term")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape --term <term> <course-code>...",
	Short: "Scrapes course sections from the course search site.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := dvc.NewClient(dvc.ClientOptions{BaseUrl: *scrapeBaseUrl})

		err := os.MkdirAll(*scrapeOut, 0777)
		if err != nil {
			serviceutil.Fatal("create output directory", err)
		}

		t1 := time.Now()
		for _, code := range args {
			course, err := client.FetchCourse(cmd.Context(), *scrapeTerm, code)
			if err != nil {
				slog.Warn("skipping course", "course", code, "err", err)
				continue
			}

			data, err := json.MarshalIndent(course, "", "  ")
			if err != nil {
				serviceutil.Fatal("encode course", err)
			}
			name := strings.ToLower(course.CourseCode) + ".json"
			err = os.WriteFile(filepath.Join(*scrapeOut, name), data, 0666)
			if err != nil {
				serviceutil.Fatal("write course json", err)
			}
			slog.Info("scraped course",
				"course", course.CourseCode,
				"sections", len(course.Sections))
		}
		slog.Info("scraping time", "seconds", time.Since(t1).Seconds())
	},
}
