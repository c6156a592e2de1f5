package commands

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"coursefinder-backend/lib/scrapers/dvc"
	"coursefinder-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var parseOut *string

func init() {
	parseOut = parseCmd.Flags().String("out", "parsed", "The directory to write per-course JSON into.")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <sections.txt>...",
	Short: "Parses schedule text dumps into per-course catalog JSON.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := os.MkdirAll(*parseOut, 0777)
		if err != nil {
			serviceutil.Fatal("create output directory", err)
		}

		for _, path := range args {
			text, err := os.ReadFile(path)
			if err != nil {
				serviceutil.Fatal("read sections text", err)
			}
			course, err := dvc.ParseSectionsText(filepath.Base(path), string(text))
			if err != nil {
				slog.Warn("skipping unparsable dump", "path", path, "err", err)
				continue
			}

			data, err := json.MarshalIndent(course, "", "  ")
			if err != nil {
				serviceutil.Fatal("encode course", err)
			}
			name := strings.ToLower(course.CourseCode) + ".json"
			err = os.WriteFile(filepath.Join(*parseOut, name), data, 0666)
			if err != nil {
				serviceutil.Fatal("write course json", err)
			}
			slog.Info("parsed course",
				"course", course.CourseCode,
				"sections", len(course.Sections))
		}
	},
}
