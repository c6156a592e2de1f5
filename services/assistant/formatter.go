package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"coursefinder-backend/lib/catalog"
	"coursefinder-backend/lib/llm"
	"coursefinder-backend/lib/query"

	"go.opentelemetry.io/otel/codes"
)

type Formatter interface {
	Format(ctx context.Context, userQuery string, parsed ParsedQuery, results []query.Result) (string, error)
}

// Context sent to the formatting model is truncated so subject-wide
// result sets do not blow the prompt; a single-course answer needs less
// room than a whole subject listing.
const (
	subjectContextLimit = 8000
	courseContextLimit  = 4000
)

const formatterSystemPrompt = `You are a community college course assistant. Turn PRE-FILTERED JSON into a clear, student-friendly answer.

CORE PRINCIPLES
1) Use ONLY the JSON in the assistant message. Do not invent or infer missing data.
2) The JSON is already PRE-FILTERED to match the user's request. Respect those filters exactly.
3) If the assistant context lists filters, show ONLY sections that match them.
4) Present results clearly and consistently for fast scanning.

OUTPUT STRUCTURE
A) One-line summary restating the user's goal with a quick count.
B) Per-course listing for EVERY course in the JSON, formatted **COURSE_CODE: Course Title**, with sections grouped under three headings in this order:
   ### HYBRID SECTIONS (includes in-person meetings)
   ### IN-PERSON SECTIONS (fully in-person)
   ### ONLINE SECTIONS
   Under each heading list ALL matching sections or write "No [category] sections found."
   For each section show: section number, instructor, days, time, location, status.
C) One or two short next-step suggestions.

NEVER reprint the raw JSON, add extra categories, or include sections not present in the JSON.`

type LLMFormatter struct {
	client llm.Client
}

func NewLLMFormatter(client llm.Client) LLMFormatter {
	return LLMFormatter{client: client}
}

func (f LLMFormatter) Format(ctx context.Context, userQuery string, parsed ParsedQuery, results []query.Result) (string, error) {
	ctx, span := tracer.Start(ctx, "LLMFormatter.Format")
	defer span.End()

	answer, err := f.client.Complete(ctx, llm.Request{
		Temperature: 0.1,
		Messages: []llm.Message{
			{Role: "system", Content: formatterSystemPrompt},
			{Role: "user", Content: userQuery},
			{Role: "assistant", Content: formatterContext(userQuery, parsed, results)},
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "formatter completion failed")
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func keywordDisplay(parsed ParsedQuery) string {
	if len(parsed.CourseCodes) > 0 {
		return strings.Join(parsed.CourseCodes, " and ")
	}
	return strings.Join(parsed.Subjects, " and ")
}

func appliedFilters(parsed ParsedQuery) []string {
	var bits []string
	if parsed.Filters.Day != "" {
		bits = append(bits, "Day: "+parsed.Filters.Day)
	}
	if parsed.Filters.Time != "" {
		bits = append(bits, "Time: "+parsed.Filters.Time)
	}
	if parsed.Filters.Instructor != "" {
		bits = append(bits, "Instructor: "+parsed.Filters.Instructor)
	}
	if parsed.Filters.Status != "" {
		bits = append(bits, "Status: "+parsed.Filters.Status)
	}
	if parsed.Filters.Mode != "" {
		bits = append(bits, "Mode: "+parsed.Filters.Mode)
	}
	return bits
}

func formatterContext(userQuery string, parsed ParsedQuery, results []query.Result) string {
	limit := courseContextLimit
	if len(parsed.CourseCodes) == 0 {
		limit = subjectContextLimit
	}

	data, _ := json.MarshalIndent(results, "", "  ")
	if len(data) > limit {
		data = data[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User asked: %q\n\n", userQuery)
	fmt.Fprintf(&b, "I found %d matching course(s) for '%s'.\n", len(results), keywordDisplay(parsed))
	if bits := appliedFilters(parsed); len(bits) > 0 {
		b.WriteString("Filters applied: " + strings.Join(bits, ", ") + "\n")
		b.WriteString("IMPORTANT: The JSON data below has been PRE-FILTERED to match these exact criteria. Show ONLY the sections in this data.\n")
		if parsed.Filters.Instructor != "" {
			fmt.Fprintf(&b, "NOTE: The user asked about instructor %q. Show ONLY sections taught by this instructor.\n", parsed.Filters.Instructor)
		}
	}
	b.WriteString("\nHere is the JSON data (already filtered):\n")
	b.Write(data)
	return b.String()
}

// TextFormatter renders results without a model, grouping each course's
// sections by modality the way the model is instructed to. It backs the
// service when no model is configured or the model call fails.
type TextFormatter struct{}

func (TextFormatter) Format(ctx context.Context, userQuery string, parsed ParsedQuery, results []query.Result) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d matching course(s) for '%s'.\n", len(results), keywordDisplay(parsed))
	if bits := appliedFilters(parsed); len(bits) > 0 {
		b.WriteString("Filters applied: " + strings.Join(bits, ", ") + "\n")
	}

	for _, result := range results {
		fmt.Fprintf(&b, "\n**%s: %s**\n", result.CourseCode, result.CourseTitle)
		if result.Prerequisites != "" {
			fmt.Fprintf(&b, "Prerequisites: %s\n", result.Prerequisites)
		}
		writeModalityGroup(&b, "HYBRID SECTIONS", result.Sections, catalog.ModalityHybrid)
		writeModalityGroup(&b, "IN-PERSON SECTIONS", result.Sections, catalog.ModalityInPerson)
		writeModalityGroup(&b, "ONLINE SECTIONS", result.Sections, catalog.ModalityOnline)
	}
	return b.String(), nil
}

func writeModalityGroup(b *strings.Builder, heading string, sections []catalog.Section, modality string) {
	var matched []catalog.Section
	for _, section := range sections {
		if section.Modality() == modality {
			matched = append(matched, section)
		}
	}
	if len(matched) == 0 {
		return
	}

	fmt.Fprintf(b, "\n### %s\n", heading)
	for _, section := range matched {
		fmt.Fprintf(b, "- Section %s\n", section.SectionNumber)
		fmt.Fprintf(b, "  - Instructor: %s\n", section.Instructor)
		fmt.Fprintf(b, "  - Status: %s\n", section.Status)
		for _, meeting := range section.Meetings {
			fmt.Fprintf(b, "  - %s %s (%s) %s\n", meeting.Days, meeting.Time, meeting.Format, meeting.Room)
		}
	}
}
