package commands

import (
	"os"
	"strings"

	"coursefinder-backend/lib/articulation"
	"coursefinder-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var transferAgreements *string

func init() {
	transferAgreements = transferCmd.Flags().String("agreements", "agreements", "The directory of articulation agreement JSON files.")
	rootCmd.AddCommand(transferCmd)
}

var transferCmd = &cobra.Command{
	Use:   "transfer <completed-course>...",
	Short: "Checks completed courses against UC articulation agreements.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		agreements, err := articulation.LoadDir(*transferAgreements)
		if err != nil {
			serviceutil.Fatal("load agreements", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Campus", "Major", "Requirement", "Status", "Using"})

		for _, eval := range articulation.EvaluateAll(agreements, args) {
			for _, match := range eval.Satisfied {
				t.AppendRow(table.Row{
					eval.Campus, eval.Major, match.UCCourse,
					"satisfied", strings.Join(match.Using, " + "),
				})
			}
			for _, missing := range eval.Missing {
				t.AppendRow(table.Row{eval.Campus, eval.Major, missing, "missing", ""})
			}
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
