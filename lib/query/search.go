package query

import (
	"context"
	"strings"

	"coursefinder-backend/lib/catalog"
	"coursefinder-backend/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("lib/query")

// Request is the structured filter request. Keywords is required; every
// other filter is vacuously true when inactive.
type Request struct {
	Keywords   TokenFilter
	Mode       TokenFilter
	Status     TokenFilter
	Instructor TokenFilter
	Day        TokenFilter
	Time       TokenFilter
	// PairDayTime links day and time tokens positionally ("Monday
	// morning or Thursday afternoon") instead of matching the two
	// filters independently. The shorter list's last token is repeated.
	PairDayTime bool
}

// Result is one matched course carrying only its matching sections. The
// sections are shallow copies of catalog records, never mutated.
type Result struct {
	CourseCode    string            `json:"course_code"`
	CourseTitle   string            `json:"course_title"`
	Prerequisites string            `json:"prerequisites,omitempty"`
	Sections      []catalog.Section `json:"sections"`
}

type Engine struct {
	store *catalog.Store
}

func NewEngine(store *catalog.Store) Engine {
	return Engine{store: store}
}

// Search scans the catalog in order and returns the courses matching the
// request, each retaining only its matching sections. It performs no I/O
// and never fails: malformed filter values simply match nothing.
func (e Engine) Search(ctx context.Context, req Request) []Result {
	_, span := tracer.Start(ctx, "Search")
	defer span.End()
	span.SetAttributes(
		attribute.StringSlice("keywords", req.Keywords.Tokens),
		attribute.Bool("pair_day_time", req.PairDayTime),
	)

	var results []Result
	for _, course := range e.store.Courses() {
		if !matchKeywords(course, req.Keywords) {
			continue
		}

		var retained []catalog.Section
		for _, section := range course.Sections {
			if sectionMatches(section, req) {
				retained = append(retained, section)
			}
		}
		if len(retained) == 0 {
			continue
		}

		results = append(results, Result{
			CourseCode:    course.CourseCode,
			CourseTitle:   course.CourseTitle,
			Prerequisites: course.Prerequisites,
			Sections:      retained,
		})
	}

	span.SetAttributes(attribute.Int("results", len(results)))
	return results
}

func matchKeywords(course catalog.Course, keywords TokenFilter) bool {
	if !keywords.Active() {
		return false
	}
	code := strings.ToLower(course.CourseCode)
	title := strings.ToLower(course.CourseTitle)
	for _, kw := range keywords.Tokens {
		if strings.Contains(code, kw) || strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

func sectionMatches(section catalog.Section, req Request) bool {
	// a section with no meetings is unclassifiable and never returned
	if len(section.Meetings) == 0 {
		return false
	}

	if req.Mode.Active() {
		modality := section.Modality()
		found := false
		for _, tok := range req.Mode.Tokens {
			if modality == tok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if req.Status.Active() {
		status := strings.ToLower(section.Status)
		found := false
		for _, tok := range req.Status.Tokens {
			if strings.Contains(status, tok) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if req.Instructor.Active() && !matchInstructor(section.Instructor, req.Instructor) {
		return false
	}

	if req.Day.Active() || req.Time.Active() {
		if req.PairDayTime && req.Day.Active() && req.Time.Active() {
			return matchDayTimePairs(section, req.Day.Tokens, req.Time.Tokens)
		}
		return matchDayTime(section, req.Day, req.Time)
	}

	return true
}

// matchInstructor treats each filter token as an alternative name. Every
// word of a name must appear in the instructor field, so "Joanne
// Strickland" matches "Strickland, Joanne" but not "Joanne Lee".
func matchInstructor(instructor string, filter TokenFilter) bool {
	lowered := textutil.NormalizeName(instructor)
	for _, name := range filter.Tokens {
		words := textutil.Fields(name)
		if len(words) == 0 {
			continue
		}
		all := true
		for _, w := range words {
			if !strings.Contains(lowered, strings.ToLower(w)) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func hasDay(days, code string) bool {
	// "Th" must be tested as a unit, otherwise it is plain containment
	// against the Days field
	return strings.Contains(days, code)
}

// matchDayTime reports whether any single meeting satisfies the day and
// time filters. Under RequireAll one meeting must carry every token by
// itself; tokens are never satisfied across separate meetings.
func matchDayTime(section catalog.Section, day, tod TokenFilter) bool {
	for _, meeting := range section.Meetings {
		if meetingDayOK(meeting, day) && meetingTimeOK(meeting, tod) {
			return true
		}
	}
	return false
}

func meetingDayOK(meeting catalog.Meeting, day TokenFilter) bool {
	if !day.Active() {
		return true
	}
	if day.RequireAll {
		for _, code := range day.Tokens {
			if !hasDay(meeting.Days, code) {
				return false
			}
		}
		return true
	}
	for _, code := range day.Tokens {
		if hasDay(meeting.Days, code) {
			return true
		}
	}
	return false
}

func meetingTimeOK(meeting catalog.Meeting, tod TokenFilter) bool {
	if !tod.Active() {
		return true
	}
	bucket, ok := bucketOf(meeting.Time)
	if !ok {
		// asynchronous, empty or unparsable: excluded while a time
		// filter is active
		return false
	}
	if tod.RequireAll {
		for _, tok := range tod.Tokens {
			if tok != bucket {
				return false
			}
		}
		return true
	}
	for _, tok := range tod.Tokens {
		if tok == bucket {
			return true
		}
	}
	return false
}

// matchDayTimePairs pairs day[i] with time[i], repeating the last token of
// the shorter list, and accepts the section when any meeting satisfies any
// pair.
func matchDayTimePairs(section catalog.Section, days, times []string) bool {
	n := len(days)
	if len(times) > n {
		n = len(times)
	}
	for i := 0; i < n; i++ {
		day := days[min(i, len(days)-1)]
		tod := times[min(i, len(times)-1)]
		for _, meeting := range section.Meetings {
			if !hasDay(meeting.Days, day) {
				continue
			}
			bucket, ok := bucketOf(meeting.Time)
			if ok && bucket == tod {
				return true
			}
		}
	}
	return false
}
