// Package dvc turns the college schedule site's semicolon-delimited
// section dumps into catalog records.
package dvc

import (
	"fmt"
	"regexp"
	"strings"

	"coursefinder-backend/lib/catalog"
)

const delim = ";"

var dayTokens = map[string]bool{
	"M": true, "T": true, "W": true, "Th": true, "F": true,
	"Sa": true, "Su": true, "Online": true,
}

var (
	codeTitleRegex  = regexp.MustCompile(`([A-Z0-9-]{3,})\s*-\s*([A-Za-z0-9:,&\-\s]+?)\s+\d{1,2}/\d{1,2}/\d{4}`)
	termRegex       = regexp.MustCompile(`dvc_([A-Za-z0-9]+)_`)
	lastUpdateRegex = regexp.MustCompile(`\((\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})\)`)
	unitsRegex      = regexp.MustCompile(`^\d+\.\d{2}$`)
	prereqRegex     = regexp.MustCompile(`(?is)Prerequisite:\s*(.+?)(?:\s*Note:|$)`)
)

// inferFormat guesses a meeting's format from its raw cells. The site
// marks partially-online sections with "PART-ONL".
func inferFormat(parts ...string) string {
	var blob strings.Builder
	for _, p := range parts {
		if p != "" {
			blob.WriteString(strings.ToLower(p))
			blob.WriteString(" ")
		}
	}
	s := blob.String()
	if strings.Contains(s, "hybrid") || strings.Contains(s, "part-onl") ||
		(strings.Contains(s, "part") && strings.Contains(s, "onl")) {
		return catalog.ModalityHybrid
	}
	if strings.Contains(s, "online") {
		return catalog.ModalityOnline
	}
	return catalog.ModalityInPerson
}

// normalizeDays splits concatenated day codes ("TTh" -> "T Th") and keeps
// only recognized tokens. "Online" collapses the whole field.
func normalizeDays(s string) string {
	if s == "" {
		return ""
	}
	replaced := strings.NewReplacer(
		"TTh", "T Th",
		"MW", "M W",
		"/", " ",
		",", " ",
	).Replace(s)

	toks := strings.Fields(replaced)
	for _, t := range toks {
		if strings.EqualFold(t, "online") {
			return "Online"
		}
	}
	var kept []string
	for _, t := range toks {
		if dayTokens[t] {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return s
	}
	return strings.Join(kept, " ")
}

func parseCodeTitle(cell string) (string, string) {
	m := codeTitleRegex.FindStringSubmatch(cell)
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

func termFromFilename(name string) string {
	m := termRegex.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

func extractLastUpdate(line string) string {
	m := lastUpdateRegex.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[1]
}

func containsMeeting(meetings []catalog.Meeting, m catalog.Meeting) bool {
	for _, existing := range meetings {
		if existing == m {
			return true
		}
	}
	return false
}

// ParseSectionsText parses one course's section dump. filename is used to
// recover the term token that prefixes each section row.
func ParseSectionsText(filename, text string) (*catalog.Course, error) {
	var lines []string
	for _, ln := range strings.Split(strings.TrimSpace(text), "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty section dump")
	}

	lastUpdate := extractLastUpdate(lines[0])

	headerIdx := -1
	for i, ln := range lines {
		low := strings.ToLower(ln)
		if strings.Contains(low, "term") && strings.Contains(low, "location") &&
			strings.Contains(low, "section") && strings.Contains(low, "course") &&
			strings.Contains(low, "instructor") && strings.Contains(low, "status") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("no header row found")
	}

	term := termFromFilename(filename)
	isNewSection := func(ln string) bool {
		return (term != "" && strings.HasPrefix(ln, term+delim)) ||
			strings.HasPrefix(ln, "202")
	}

	var courseCode, courseTitle string
	var sections []catalog.Section

	i := headerIdx + 1
	for i < len(lines) {
		ln := lines[i]
		if !isNewSection(ln) {
			i++
			continue
		}

		cells := splitCells(ln)
		var sectionNum, mega string
		if len(cells) > 2 {
			sectionNum = cells[2]
		}
		if len(cells) > 3 {
			mega = cells[3]
		}

		code, title := parseCodeTitle(mega)
		if courseCode == "" {
			courseCode = code
		}
		if courseTitle == "" {
			courseTitle = title
		}

		unitsIdx := -1
		for idx, c := range cells {
			if unitsRegex.MatchString(c) {
				unitsIdx = idx
			}
		}

		var instructor, status string
		if unitsIdx >= 0 {
			tail := cells[unitsIdx+1:]
			if len(tail) >= 1 {
				instructor = strings.TrimSpace(tail[0])
			}
			if len(tail) >= 4 {
				status = strings.TrimSpace(tail[3])
			}
		}
		if status == "" {
			status = "Open, Seats Available"
		}

		section := catalog.Section{
			SectionNumber: sectionNum,
			Instructor:    instructor,
			Status:        status,
		}

		i++
		for i < len(lines) && !isNewSection(lines[i]) {
			parts := splitCells(lines[i])
			var days, timeStr, bldg, room string
			if len(parts) > 0 {
				days = parts[0]
			}
			if len(parts) > 1 {
				timeStr = parts[1]
			}
			if len(parts) > 2 {
				bldg = parts[2]
			}
			if len(parts) > 3 {
				room = parts[3]
			}

			format := inferFormat(days, timeStr, bldg, room)
			loc := strings.ToLower(bldg + " " + room)

			ndays := normalizeDays(days)
			if ndays == "" && strings.Contains(loc, "online") {
				ndays = "Online"
			}
			ntime := timeStr
			if ntime == "" && strings.Contains(loc, "online") {
				ntime = "Asynchronous"
			}
			nroom := room
			if nroom == "" && strings.Contains(strings.ToLower(bldg+" "+timeStr+" "+days), "online") {
				nroom = "Online"
			}

			if ndays != "" || ntime != "" || nroom != "" {
				meeting := catalog.Meeting{
					Days:   ndays,
					Time:   ntime,
					Room:   nroom,
					Format: format,
				}
				if !containsMeeting(section.Meetings, meeting) {
					section.Meetings = append(section.Meetings, meeting)
				}
			}
			i++
		}

		sections = append(sections, section)
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("no sections found")
	}

	course := &catalog.Course{
		CourseCode:  courseCode,
		CourseTitle: courseTitle,
		LastUpdate:  lastUpdate,
		Sections:    sections,
	}

	if m := prereqRegex.FindStringSubmatch(strings.Join(lines, "\n")); m != nil {
		course.Prerequisites = strings.TrimSpace(m[1])
	}

	return course, nil
}

func splitCells(ln string) []string {
	parts := strings.Split(ln, delim)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
