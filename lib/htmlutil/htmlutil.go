package htmlutil

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CollapseText returns the selection's text with runs of whitespace
// squashed to single spaces.
func CollapseText(sel *goquery.Selection) string {
	text := strings.TrimSpace(sel.Text())
	return innerWhitespace.ReplaceAllString(text, " ")
}

// RowsText extracts one line of joined cell text per table row, cells
// separated by sep.
func RowsText(table *goquery.Selection, sep string) []string {
	var rows []string
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, CollapseText(cell))
		})
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, sep))
		}
	})
	return rows
}
