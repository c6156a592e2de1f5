package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coursefinder-backend/lib/catalog"
	"coursefinder-backend/lib/chatlog"
	"coursefinder-backend/lib/query"
	"coursefinder-backend/lib/sqliteutil"
	"coursefinder-backend/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testCourses = []catalog.Course{
	{
		CourseCode:    "MATH-193",
		CourseTitle:   "Calculus III",
		Prerequisites: "MATH-192 with a C or better",
		Sections: []catalog.Section{
			{
				SectionNumber: "1001",
				Instructor:    "Strickland, Joanne",
				Status:        "Open",
				Meetings: []catalog.Meeting{
					{Days: "M W", Time: "9:30AM - 11:20AM", Room: "MA-101", Format: "In-Person"},
				},
			},
			{
				SectionNumber: "1002",
				Instructor:    "Lo, Kevin",
				Status:        "Waitlist",
				Meetings: []catalog.Meeting{
					{Days: "T Th", Time: "6:00PM - 7:50PM", Room: "MA-102", Format: "In-Person"},
				},
			},
		},
	},
	{
		CourseCode:  "COMSC-110",
		CourseTitle: "Introduction to Programming",
		Sections: []catalog.Section{
			{
				SectionNumber: "2001",
				Instructor:    "Patel, Anika",
				Status:        "Open",
				Meetings: []catalog.Meeting{
					{Days: "Online", Time: "Asynchronous", Room: "Online", Format: "Online"},
				},
			},
		},
	},
}

type fakeParser struct {
	parsed ParsedQuery
	err    error
}

func (f fakeParser) Parse(ctx context.Context, query string) (ParsedQuery, error) {
	return f.parsed, f.err
}

type captureFormatter struct {
	results []query.Result
	parsed  ParsedQuery
}

func (f *captureFormatter) Format(ctx context.Context, userQuery string, parsed ParsedQuery, results []query.Result) (string, error) {
	f.results = results
	f.parsed = parsed
	return "formatted", nil
}

func testService(t *testing.T, parser QueryParser, formatter Formatter) Service {
	t.Cleanup(telemetry.SetupForTesting(t, "test:services/assistant"))
	store := catalog.NewStore(testCourses)
	return NewService(store, parser, formatter, nil)
}

func TestHeuristicParser(t *testing.T) {
	store := catalog.NewStore(testCourses)
	parser := NewHeuristicParser(store)

	for _, test := range []struct {
		query    string
		expected ParsedQuery
	}{
		{
			query: "Show me all available comsc-110 in person sections",
			expected: ParsedQuery{
				CourseCodes: []string{"COMSC-110"},
				Intent:      IntentFindSections,
				Filters:     Filters{Mode: "in-person"},
			},
		},
		{
			query: "Show me open MATH-193 sections on monday mornings",
			expected: ParsedQuery{
				CourseCodes: []string{"MATH-193"},
				Intent:      IntentFindSections,
				Filters:     Filters{Status: "open", Day: "M", Time: "morning"},
			},
		},
		{
			query: "What are the prerequisites for physc 230",
			expected: ParsedQuery{
				CourseCodes: []string{"PHYS-230"},
				Intent:      IntentPrerequisites,
			},
		},
		{
			query: "Show online computer science classes",
			expected: ParsedQuery{
				Subjects: []string{"COMSC"},
				Intent:   IntentFindSections,
				Filters:  Filters{Mode: "online"},
			},
		},
		{
			query:    "I want a fun stem class",
			expected: ParsedQuery{Intent: IntentFindSections},
		},
	} {
		t.Run(test.query, func(t *testing.T) {
			parsed, err := parser.Parse(context.Background(), test.query)
			require.NoError(t, err)
			if diff := cmp.Diff(test.expected, parsed); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestApplyQueryFallbacks(t *testing.T) {
	parsed := ParsedQuery{Intent: IntentFindSections}
	applyQueryFallbacks("any avaliable math-193 taught by Professor Julie?", &parsed)
	require.Equal(t, "open", parsed.Filters.Status)
	require.Equal(t, "Julie", parsed.Filters.Instructor)

	// explicit parser output is never overridden
	parsed = ParsedQuery{Filters: Filters{Status: "closed", Instructor: "Lo"}}
	applyQueryFallbacks("available sections with prof Julie", &parsed)
	require.Equal(t, "closed", parsed.Filters.Status)
	require.Equal(t, "Lo", parsed.Filters.Instructor)
}

func TestBuildRequestWidensInPerson(t *testing.T) {
	req := buildRequest(ParsedQuery{
		CourseCodes: []string{"MATH-193"},
		Filters:     Filters{Mode: "in-person"},
	})
	require.Equal(t, []string{"in-person", "hybrid"}, req.Mode.Tokens)

	req = buildRequest(ParsedQuery{
		CourseCodes: []string{"MATH-193"},
		Filters:     Filters{Mode: "online"},
	})
	require.Equal(t, []string{"online"}, req.Mode.Tokens)
}

func TestBuildRequestPairsCompoundDayTime(t *testing.T) {
	req := buildRequest(ParsedQuery{
		Subjects: []string{"MATH"},
		Filters:  Filters{Day: "monday and thursday", Time: "morning and evening"},
	})
	require.True(t, req.PairDayTime)

	req = buildRequest(ParsedQuery{
		Subjects: []string{"MATH"},
		Filters:  Filters{Day: "monday or thursday", Time: "morning"},
	})
	require.False(t, req.PairDayTime)
}

func TestAskGuidanceWhenNothingParsed(t *testing.T) {
	service := testService(t, fakeParser{parsed: ParsedQuery{Intent: IntentFindSections}}, TextFormatter{})
	response, err := service.Ask(context.Background(), "I want a fun class")
	require.NoError(t, err)
	require.Contains(t, response, "include a subject")
}

func TestAskPrerequisites(t *testing.T) {
	service := testService(t, fakeParser{parsed: ParsedQuery{
		CourseCodes: []string{"MATH-193"},
		Intent:      IntentPrerequisites,
	}}, TextFormatter{})
	response, err := service.Ask(context.Background(), "prereqs for math-193?")
	require.NoError(t, err)
	require.Contains(t, response, "MATH-193: Calculus III")
	require.Contains(t, response, "MATH-192 with a C or better")
}

func TestAskPrerequisitesNoneListed(t *testing.T) {
	service := testService(t, fakeParser{parsed: ParsedQuery{
		CourseCodes: []string{"COMSC-110"},
		Intent:      IntentPrerequisites,
	}}, TextFormatter{})
	response, err := service.Ask(context.Background(), "prereqs for comsc-110?")
	require.NoError(t, err)
	require.Contains(t, response, "No prerequisites listed")
}

func TestAskFallsBackToHeuristicsOnParserError(t *testing.T) {
	formatter := &captureFormatter{}
	service := testService(t, fakeParser{err: errors.New("model unavailable")}, formatter)

	response, err := service.Ask(context.Background(), "open math-193 sections on monday")
	require.NoError(t, err)
	require.Equal(t, "formatted", response)
	require.Len(t, formatter.results, 1)
	require.Equal(t, "MATH-193", formatter.results[0].CourseCode)
	require.Len(t, formatter.results[0].Sections, 1)
	require.Equal(t, "1001", formatter.results[0].Sections[0].SectionNumber)
}

func TestAskFormatsFilteredResults(t *testing.T) {
	formatter := &captureFormatter{}
	service := testService(t, fakeParser{parsed: ParsedQuery{
		CourseCodes: []string{"MATH-193"},
		Intent:      IntentFindSections,
		Filters:     Filters{Time: "evening"},
	}}, formatter)

	_, err := service.Ask(context.Background(), "evening math-193 sections")
	require.NoError(t, err)
	require.Len(t, formatter.results, 1)
	require.Len(t, formatter.results[0].Sections, 1)
	require.Equal(t, "1002", formatter.results[0].Sections[0].SectionNumber)
}

func TestAskDiagnosesUnknownCourse(t *testing.T) {
	service := testService(t, fakeParser{parsed: ParsedQuery{
		CourseCodes: []string{"MATH-199"},
		Intent:      IntentFindSections,
	}}, TextFormatter{})

	response, err := service.Ask(context.Background(), "show math-199 sections")
	require.NoError(t, err)
	require.Contains(t, response, "couldn't find any courses")
	require.Contains(t, response, "Did you mean")
	require.Contains(t, response, "MATH-193")
}

func TestAskDiagnosesOverFiltering(t *testing.T) {
	service := testService(t, fakeParser{parsed: ParsedQuery{
		CourseCodes: []string{"MATH-193"},
		Intent:      IntentFindSections,
		Filters:     Filters{Day: "F"},
	}}, TextFormatter{})

	response, err := service.Ask(context.Background(), "friday math-193 sections")
	require.NoError(t, err)
	require.Contains(t, response, "no sections with your current filters")
	require.Contains(t, response, "Day: F")
}

func TestAskLogsInteraction(t *testing.T) {
	t.Cleanup(telemetry.SetupForTesting(t, "test:services/assistant"))
	db, err := sqliteutil.OpenDB(chatlog.Schema, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	log := chatlog.NewStore(db)

	store := catalog.NewStore(testCourses)
	service := NewService(store, fakeParser{parsed: ParsedQuery{
		CourseCodes: []string{"MATH-193"},
		Intent:      IntentFindSections,
	}}, TextFormatter{}, &log)

	_, err = service.Ask(context.Background(), "show math-193 sections")
	require.NoError(t, err)

	entries, err := log.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "show math-193 sections", entries[0].Prompt)
	require.NotEmpty(t, entries[0].RequestID)

	var parsed ParsedQuery
	require.NoError(t, json.Unmarshal([]byte(entries[0].Parsed), &parsed))
	require.Equal(t, []string{"MATH-193"}, parsed.CourseCodes)
}

func TestTextFormatterGroupsByModality(t *testing.T) {
	parsed := ParsedQuery{CourseCodes: []string{"MATH-193"}}
	results := []query.Result{{
		CourseCode:  "MATH-193",
		CourseTitle: "Calculus III",
		Sections:    testCourses[0].Sections,
	}}
	response, err := TextFormatter{}.Format(context.Background(), "math-193", parsed, results)
	require.NoError(t, err)
	require.Contains(t, response, "### IN-PERSON SECTIONS")
	require.Contains(t, response, "Section 1001")
	require.Contains(t, response, "Section 1002")
	require.NotContains(t, response, "### ONLINE SECTIONS")
}

func TestSuggestCourseCodes(t *testing.T) {
	known := []string{"MATH-193", "MATH-192", "COMSC-110", "PHYS-130"}
	suggestions := suggestCourseCodes("MATH-199", known, 3)
	require.NotEmpty(t, suggestions)
	require.Contains(t, suggestions, "MATH-193")
	require.NotContains(t, suggestions, "PHYS-130")
}

func TestHTTPAsk(t *testing.T) {
	service := testService(t, fakeParser{parsed: ParsedQuery{
		CourseCodes: []string{"MATH-193"},
		Intent:      IntentFindSections,
	}}, TextFormatter{})
	mux := http.NewServeMux()
	service.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(
		"POST", "/ask",
		strings.NewReader(`{"query":"show math-193 sections"}`),
	))
	require.Equal(t, http.StatusOK, rec.Code)

	var body askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Contains(t, body.Response, "MATH-193")
}

func TestHTTPAskRejectsEmptyQuery(t *testing.T) {
	service := testService(t, fakeParser{}, TextFormatter{})
	mux := http.NewServeMux()
	service.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/ask", strings.NewReader(`{"query":"  "}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPSearch(t *testing.T) {
	service := testService(t, fakeParser{}, TextFormatter{})
	mux := http.NewServeMux()
	service.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(
		"POST", "/search",
		strings.NewReader(`{"keywords":["math"],"status":"open"}`),
	))
	require.Equal(t, http.StatusOK, rec.Code)

	var results []query.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	require.Equal(t, "MATH-193", results[0].CourseCode)
	require.Len(t, results[0].Sections, 1)
}

func TestHTTPHealth(t *testing.T) {
	service := testService(t, fakeParser{}, TextFormatter{})
	mux := http.NewServeMux()
	service.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, float64(2), body["courses_loaded"])
}
