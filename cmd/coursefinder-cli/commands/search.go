package commands

import (
	"os"
	"strings"

	"coursefinder-backend/lib/catalog"
	"coursefinder-backend/lib/query"
	"coursefinder-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	searchCatalog    *string
	searchMode       *string
	searchStatus     *string
	searchInstructor *string
	searchDay        *string
	searchTime       *string
)

func init() {
	searchCatalog = searchCmd.Flags().String("catalog", "catalog.json", "The catalog JSON to search.")
	searchMode = searchCmd.Flags().String("mode", "", "Modality filter, e.g. 'online' or 'in-person or hybrid'.")
	searchStatus = searchCmd.Flags().String("status", "", "Status filter, e.g. 'open' or 'open or waitlist'.")
	searchInstructor = searchCmd.Flags().String("instructor", "", "Instructor filter, e.g. 'Lo or Julie'.")
	searchDay = searchCmd.Flags().String("day", "", "Day filter, e.g. 'monday' or 'T and Th'.")
	searchTime = searchCmd.Flags().String("time", "", "Time-of-day filter: morning, afternoon, evening.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword>...",
	Short: "Searches the catalog for matching course sections.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		courses, err := catalog.LoadFile(*searchCatalog)
		if err != nil {
			serviceutil.Fatal("load catalog", err)
		}

		engine := query.NewEngine(catalog.NewStore(courses))
		results := engine.Search(cmd.Context(), query.Request{
			Keywords:   query.NormalizeKeywords(args),
			Mode:       query.NormalizeMode(*searchMode),
			Status:     query.NormalizeStatus(*searchStatus),
			Instructor: query.NormalizeInstructor(*searchInstructor),
			Day:        query.NormalizeDay(*searchDay),
			Time:       query.NormalizeTime(*searchTime),
		})

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Course", "Section", "Instructor", "Status", "Modality", "Days", "Time", "Room"})

		for _, result := range results {
			for _, section := range result.Sections {
				var days, times, rooms []string
				for _, meeting := range section.Meetings {
					days = append(days, meeting.Days)
					times = append(times, meeting.Time)
					rooms = append(rooms, meeting.Room)
				}
				t.AppendRow(table.Row{
					result.CourseCode,
					section.SectionNumber,
					section.Instructor,
					section.Status,
					section.Modality(),
					strings.Join(days, "\n"),
					strings.Join(times, "\n"),
					strings.Join(rooms, "\n"),
				})
			}
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
