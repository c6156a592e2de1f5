package query

import (
	"context"
	"testing"

	"coursefinder-backend/lib/catalog"
	"coursefinder-backend/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testStore() *catalog.Store {
	return catalog.NewStore([]catalog.Course{
		{
			CourseCode:    "MATH-193",
			CourseTitle:   "Calculus III",
			Prerequisites: "MATH-292 or equivalent",
			Sections: []catalog.Section{
				{
					SectionNumber: "6134",
					Instructor:    "Strickland, Joanne",
					Status:        "Open, Seats Available",
					Meetings: []catalog.Meeting{
						{Days: "M W", Time: "8:30AM - 11:00AM", Room: "209", Format: "in-person"},
					},
				},
				{
					SectionNumber: "6135",
					Instructor:    "Lee, Joanne",
					Status:        "Open, Waitlist",
					Meetings: []catalog.Meeting{
						{Days: "T Th", Time: "5:30PM - 8:00PM", Room: "211", Format: "in-person"},
					},
				},
				{
					SectionNumber: "6136",
					Instructor:    "Staff",
					Status:        "Open, Seats Available",
					Meetings: []catalog.Meeting{
						{Days: "Online", Time: "Asynchronous", Room: "Online", Format: "online"},
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
					Instructor:    "Lo, Wen",
					Status:        "Open, Seats Available",
					Meetings: []catalog.Meeting{
						{Days: "M", Time: "10:00AM - 11:50AM", Room: "105", Format: "in-person"},
						{Days: "W", Time: "10:00AM - 11:50AM", Room: "Online", Format: "online"},
					},
				},
				{
					SectionNumber: "2002",
					Instructor:    "Vang, Julie",
					Status:        "Clsd",
					Meetings: []catalog.Meeting{
						{Days: "F", Time: "1:00PM - 3:50PM", Room: "105", Format: "in-person"},
					},
				},
				{
					// sections without meetings are unclassifiable
					// and never returned
					SectionNumber: "2003",
					Instructor:    "Staff",
					Status:        "Open, Seats Available",
				},
			},
		},
		{
			CourseCode:  "PHYS-130",
			CourseTitle: "Physics for Engineers",
			Sections: []catalog.Section{
				{
					SectionNumber: "4410",
					Instructor:    "Staff",
					Status:        "Open, Seats Available",
					Meetings: []catalog.Meeting{
						{Days: "Th", Time: "2:00PM - 4:50PM", Room: "318", Format: "in-person"},
					},
				},
			},
		},
	})
}

func testEngine(t *testing.T) Engine {
	t.Helper()
	cleanup := telemetry.SetupForTesting(t, "test:lib/query")
	t.Cleanup(cleanup)
	return NewEngine(testStore())
}

func sectionNumbers(results []Result) map[string][]string {
	out := map[string][]string{}
	for _, r := range results {
		var numbers []string
		for _, s := range r.Sections {
			numbers = append(numbers, s.SectionNumber)
		}
		out[r.CourseCode] = numbers
	}
	return out
}

func TestVacuousFilters(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	results := engine.Search(ctx, Request{
		Keywords: NormalizeKeywords([]string{"MATH-193"}),
	})

	// every section with at least one meeting comes back, regardless of
	// status, mode, day or time
	diff := cmp.Diff(map[string][]string{
		"MATH-193": {"6134", "6135", "6136"},
	}, sectionNumbers(results))
	if diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, "MATH-292 or equivalent", results[0].Prerequisites)
}

func TestSearchIsDeterministic(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	req := Request{
		Keywords: NormalizeKeywords([]string{"COMSC", "MATH"}),
		Status:   NormalizeStatus("open"),
	}
	first := engine.Search(ctx, req)
	second := engine.Search(ctx, req)

	diff := cmp.Diff(first, second)
	if diff != "" {
		t.Fatal(diff)
	}
	// catalog iteration order is preserved
	require.Equal(t, "MATH-193", first[0].CourseCode)
	require.Equal(t, "COMSC-110", first[1].CourseCode)
}

func TestSearchDoesNotMutateCatalog(t *testing.T) {
	store := testStore()
	engine := NewEngine(store)
	before := len(store.Courses()[0].Sections)

	engine.Search(context.Background(), Request{
		Keywords: NormalizeKeywords([]string{"MATH"}),
		Status:   NormalizeStatus("waitlist"),
	})

	require.Equal(t, before, len(store.Courses()[0].Sections))
}

func TestKeywordSubjectPrefix(t *testing.T) {
	engine := testEngine(t)

	results := engine.Search(context.Background(), Request{
		Keywords: NormalizeKeywords([]string{"COMSC"}),
	})
	require.Len(t, results, 1)
	require.Equal(t, "COMSC-110", results[0].CourseCode)

	// title substrings match too
	results = engine.Search(context.Background(), Request{
		Keywords: NormalizeKeywords([]string{"calculus"}),
	})
	require.Len(t, results, 1)
	require.Equal(t, "MATH-193", results[0].CourseCode)
}

func TestModeFilter(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	// the two-meeting COMSC section mixes in-person and online, so it
	// classifies as hybrid and a strict in-person filter excludes it
	results := engine.Search(ctx, Request{
		Keywords: NormalizeKeywords([]string{"COMSC-110"}),
		Mode:     NormalizeMode("in-person"),
	})
	diff := cmp.Diff(map[string][]string{
		"COMSC-110": {"2002"},
	}, sectionNumbers(results))
	if diff != "" {
		t.Fatal(diff)
	}

	// the widened token set the caller uses for in-person searches
	// surfaces the hybrid section as well
	results = engine.Search(ctx, Request{
		Keywords: NormalizeKeywords([]string{"COMSC-110"}),
		Mode:     Tokens("in-person", "hybrid"),
	})
	diff = cmp.Diff(map[string][]string{
		"COMSC-110": {"2001", "2002"},
	}, sectionNumbers(results))
	if diff != "" {
		t.Fatal(diff)
	}

	results = engine.Search(ctx, Request{
		Keywords: NormalizeKeywords([]string{"MATH"}),
		Mode:     NormalizeMode("online"),
	})
	diff = cmp.Diff(map[string][]string{
		"MATH-193": {"6136"},
	}, sectionNumbers(results))
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestStatusSubstring(t *testing.T) {
	engine := testEngine(t)

	results := engine.Search(context.Background(), Request{
		Keywords: NormalizeKeywords([]string{"MATH-193"}),
		Status:   NormalizeStatus("open or waitlist"),
	})
	require.Equal(t, []string{"6134", "6135", "6136"}, sectionNumbers(results)["MATH-193"])

	results = engine.Search(context.Background(), Request{
		Keywords: NormalizeKeywords([]string{"MATH-193"}),
		Status:   NormalizeStatus("waitlist"),
	})
	require.Equal(t, []string{"6135"}, sectionNumbers(results)["MATH-193"])
}

func TestInstructorAllNameTokens(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	// both name words must appear: "Strickland, Joanne" matches,
	// "Lee, Joanne" does not
	results := engine.Search(ctx, Request{
		Keywords:   NormalizeKeywords([]string{"MATH-193"}),
		Instructor: NormalizeInstructor("Joanne Strickland"),
	})
	require.Equal(t, []string{"6134"}, sectionNumbers(results)["MATH-193"])

	// alternatives combine disjunctively
	results = engine.Search(ctx, Request{
		Keywords:   NormalizeKeywords([]string{"COMSC"}),
		Instructor: NormalizeInstructor("Lo or Julie"),
	})
	require.Equal(t, []string{"2001", "2002"}, sectionNumbers(results)["COMSC-110"])
}

func TestDayFilter(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	results := engine.Search(ctx, Request{
		Keywords: NormalizeKeywords([]string{"MATH-193"}),
		Day:      NormalizeDay("Monday"),
	})
	require.Equal(t, []string{"6134"}, sectionNumbers(results)["MATH-193"])

	results = engine.Search(ctx, Request{
		Keywords: NormalizeKeywords([]string{"MATH-193"}),
		Day:      NormalizeDay("Tue or Thu"),
	})
	require.Equal(t, []string{"6135"}, sectionNumbers(results)["MATH-193"])
}

func TestDayRequireAllIsPerMeeting(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	// MATH-193 6134 meets M and W in one meeting: retained
	results := engine.Search(ctx, Request{
		Keywords: NormalizeKeywords([]string{"MATH-193"}),
		Day:      NormalizeDay("Monday and Wednesday"),
	})
	require.Equal(t, []string{"6134"}, sectionNumbers(results)["MATH-193"])

	// COMSC-110 2001 meets Monday and Wednesday in two separate
	// meetings; no single meeting has both days, so it is excluded
	results = engine.Search(ctx, Request{
		Keywords: NormalizeKeywords([]string{"COMSC-110"}),
		Day:      NormalizeDay("Monday and Wednesday"),
	})
	require.Empty(t, results)
}

func TestTimeFilterExcludesAsynchronous(t *testing.T) {
	engine := testEngine(t)

	results := engine.Search(context.Background(), Request{
		Keywords: NormalizeKeywords([]string{"MATH-193"}),
		Time:     NormalizeTime("morning"),
	})
	// 6136 is asynchronous and fails closed under an active time filter
	require.Equal(t, []string{"6134"}, sectionNumbers(results)["MATH-193"])
}

func TestEndToEndScenario(t *testing.T) {
	engine := testEngine(t)

	results := engine.Search(context.Background(), Request{
		Keywords: NormalizeKeywords([]string{"MATH-193"}),
		Status:   NormalizeStatus("open"),
		Day:      NormalizeDay("M"),
		Time:     NormalizeTime("morning"),
	})
	diff := cmp.Diff(map[string][]string{
		"MATH-193": {"6134"},
	}, sectionNumbers(results))
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestCompoundDayTimePairs(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	// "Monday morning or Thursday afternoon": the pairs are (M,
	// morning) and (Th, afternoon)
	req := Request{
		Keywords:    NormalizeKeywords([]string{"MATH", "PHYS"}),
		Day:         DayList([]string{"M", "Th"}),
		Time:        TimeList([]string{"morning", "afternoon"}),
		PairDayTime: true,
	}
	results := engine.Search(ctx, req)
	diff := cmp.Diff(map[string][]string{
		"MATH-193": {"6134"},
		"PHYS-130": {"4410"},
	}, sectionNumbers(results))
	if diff != "" {
		t.Fatal(diff)
	}

	// independent matching would also accept a Thursday morning
	// section; pairing must not. 6135 meets Th evenings and matches
	// neither pair.
	require.NotContains(t, sectionNumbers(results)["MATH-193"], "6135")

	// unequal lists repeat the final token
	req.Day = DayList([]string{"M", "Th", "F"})
	req.Time = TimeList([]string{"afternoon"})
	results = engine.Search(ctx, req)
	diff = cmp.Diff(map[string][]string{
		"PHYS-130": {"4410"},
	}, sectionNumbers(results))
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestNoMatchDiagnosisPair(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	// unknown course: nothing exists for the keyword at all
	require.Empty(t, engine.Search(ctx, Request{
		Keywords: NormalizeKeywords([]string{"COMSC-999"}),
	}))

	// existing course with filters too strict: also empty, but a
	// second unfiltered call distinguishes the two cases
	require.Empty(t, engine.Search(ctx, Request{
		Keywords: NormalizeKeywords([]string{"PHYS-130"}),
		Status:   NormalizeStatus("closed"),
	}))
	require.NotEmpty(t, engine.Search(ctx, Request{
		Keywords: NormalizeKeywords([]string{"PHYS-130"}),
	}))
}
