package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"coursefinder-backend/lib/catalog"
	"coursefinder-backend/lib/llm"

	"go.opentelemetry.io/otel/codes"
)

const (
	IntentFindSections  = "find_sections"
	IntentPrerequisites = "prerequisites"
	IntentInstructors   = "instructors"
)

type Filters struct {
	Mode       string `json:"mode,omitempty"`
	Status     string `json:"status,omitempty"`
	Day        string `json:"day,omitempty"`
	Time       string `json:"time,omitempty"`
	Instructor string `json:"instructor,omitempty"`
}

// ParsedQuery is the structured reading of a free-form user question.
// CourseCodes and Subjects are upper-cased and restricted to values the
// catalog actually contains.
type ParsedQuery struct {
	CourseCodes []string `json:"course_codes"`
	Subjects    []string `json:"subjects"`
	Intent      string   `json:"intent"`
	Filters     Filters  `json:"filters"`
}

type QueryParser interface {
	Parse(ctx context.Context, query string) (ParsedQuery, error)
}

// allowLists collects the course codes and subject prefixes present in
// the catalog snapshot, for constraining parser output.
func allowLists(store *catalog.Store) (codeSet map[string]bool, subjectSet map[string]bool) {
	codeSet = make(map[string]bool)
	subjectSet = make(map[string]bool)
	for _, code := range store.CourseCodes() {
		upper := strings.ToUpper(code)
		codeSet[upper] = true
		prefix, _, found := strings.Cut(upper, "-")
		if found {
			subjectSet[prefix] = true
		}
	}
	return codeSet, subjectSet
}

type LLMParser struct {
	client llm.Client
	store  *catalog.Store
}

func NewLLMParser(client llm.Client, store *catalog.Store) LLMParser {
	return LLMParser{client: client, store: store}
}

const parserSystemPrompt = `You are an intent and entity parser for a community college course finder. Normalize and correct typos in the user's text before extracting entities. Return STRICT JSON ONLY (no prose, no markdown) with keys:
{
  "course_codes": [exact codes like "COMSC-110"],
  "subjects": [subject prefixes like "COMSC", "MATH"],
  "intent": "find_sections" | "prerequisites" | "instructors",
  "filters": {
    "mode": "in-person" | "online" | "hybrid" | null,
    "status": "open" | "closed" | null,
    "day": "M" | "T" | "W" | "Th" | "F" | null,
    "time": "morning" | "afternoon" | "evening" | null,
    "instructor": string or null
  }
}
Rules:
- Only choose course_codes from ALLOWED_COURSE_CODES.
- Only choose subjects from ALLOWED_SUBJECT_PREFIXES.
- If the user names a course by title, map it to its code via ALLOWED_TITLES.
- prerequisites/prereq questions set intent="prerequisites".
- professor/instructor/who-teaches questions set intent="instructors".
- Otherwise intent="find_sections".
- Extract simple filters when present, else nulls.`

type parserPayload struct {
	UserQuery              string              `json:"USER_QUERY"`
	AllowedCourseCodes     []string            `json:"ALLOWED_COURSE_CODES"`
	AllowedSubjectPrefixes []string            `json:"ALLOWED_SUBJECT_PREFIXES"`
	AllowedTitles          []parserAllowedCode `json:"ALLOWED_TITLES"`
	Notes                  string              `json:"NOTES"`
}

type parserAllowedCode struct {
	CourseCode  string `json:"course_code"`
	CourseTitle string `json:"course_title"`
}

// Parse asks the model for a structured reading at temperature zero,
// then enforces the catalog allow-lists on its answer. Codes or
// subjects the catalog does not contain are dropped, never passed
// through.
func (p LLMParser) Parse(ctx context.Context, query string) (ParsedQuery, error) {
	ctx, span := tracer.Start(ctx, "LLMParser.Parse")
	defer span.End()

	codeSet, subjectSet := allowLists(p.store)
	payload := parserPayload{
		UserQuery: query,
		Notes:     "Days may be written as Monday/Mon/Tues/Thursday/etc.; map to M,T,W,Th,F.",
	}
	for code := range codeSet {
		payload.AllowedCourseCodes = append(payload.AllowedCourseCodes, code)
	}
	for prefix := range subjectSet {
		payload.AllowedSubjectPrefixes = append(payload.AllowedSubjectPrefixes, prefix)
	}
	for _, course := range p.store.Courses() {
		if course.CourseTitle == "" {
			continue
		}
		payload.AllowedTitles = append(payload.AllowedTitles, parserAllowedCode{
			CourseCode:  strings.ToUpper(course.CourseCode),
			CourseTitle: course.CourseTitle,
		})
	}
	user, err := json.Marshal(payload)
	if err != nil {
		return ParsedQuery{}, err
	}

	raw, err := p.client.Complete(ctx, llm.Request{
		Temperature: 0,
		Messages: []llm.Message{
			{Role: "system", Content: parserSystemPrompt},
			{Role: "user", Content: string(user)},
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parser completion failed")
		return ParsedQuery{}, err
	}

	var parsed ParsedQuery
	err = json.Unmarshal([]byte(stripCodeFence(raw)), &parsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parser returned malformed json")
		return ParsedQuery{}, fmt.Errorf("parse model output: %w", err)
	}

	var keptCodes []string
	for _, code := range parsed.CourseCodes {
		code = strings.ToUpper(code)
		if codeSet[code] {
			keptCodes = append(keptCodes, code)
		}
	}
	parsed.CourseCodes = keptCodes
	var keptSubjects []string
	for _, subject := range parsed.Subjects {
		subject = strings.ToUpper(subject)
		if subjectSet[subject] {
			keptSubjects = append(keptSubjects, subject)
		}
	}
	parsed.Subjects = keptSubjects
	if parsed.Intent == "" {
		parsed.Intent = IntentFindSections
	}
	return parsed, nil
}

// stripCodeFence tolerates models that wrap JSON in a ```json block
// despite the strict-JSON instruction.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// subjectPrefixes maps natural-language subject words to catalog code
// prefixes, typo spellings included.
var subjectPrefixes = map[string]string{
	"engineering":      "ENGIN",
	"engineer":         "ENGIN",
	"physics":          "PHYS",
	"physical":         "PHYS",
	"physc":            "PHYS",
	"biology":          "BIOSC",
	"bio":              "BIOSC",
	"biological":       "BIOSC",
	"chemistry":        "CHEM",
	"chem":             "CHEM",
	"computer science": "COMSC",
	"compsci":          "COMSC",
	"comsc":            "COMSC",
	"cs":               "COMSC",
	"math":             "MATH",
	"mathematics":      "MATH",
}

var dayWords = map[string]string{
	"monday": "M", "mon": "M",
	"tuesday": "T", "tue": "T", "tues": "T",
	"wednesday": "W", "wed": "W",
	"thursday": "Th", "thu": "Th", "thur": "Th", "thurs": "Th",
	"friday": "F", "fri": "F",
}

// HeuristicParser reads queries with fixed keyword tables. It backs the
// service when no model is configured or the model call fails, so it
// never returns an error.
type HeuristicParser struct {
	store *catalog.Store
}

func NewHeuristicParser(store *catalog.Store) HeuristicParser {
	return HeuristicParser{store: store}
}

func (p HeuristicParser) Parse(ctx context.Context, query string) (ParsedQuery, error) {
	lower := strings.ToLower(query)
	_, subjectSet := allowLists(p.store)

	parsed := ParsedQuery{Intent: IntentFindSections}
	if code := extractCourseCode(query); code != "" {
		parsed.CourseCodes = []string{code}
	} else {
		for word, prefix := range subjectPrefixes {
			if !strings.Contains(lower, word) || !subjectSet[prefix] {
				continue
			}
			if !containsString(parsed.Subjects, prefix) {
				parsed.Subjects = append(parsed.Subjects, prefix)
			}
		}
	}

	if strings.Contains(lower, "prerequisite") || strings.Contains(lower, "prereq") {
		parsed.Intent = IntentPrerequisites
	} else if strings.Contains(lower, "who teaches") {
		parsed.Intent = IntentInstructors
	}

	for word, code := range dayWords {
		if strings.Contains(lower, word) {
			parsed.Filters.Day = code
			break
		}
	}
	for _, bucket := range []string{"morning", "afternoon", "evening"} {
		if strings.Contains(lower, bucket) {
			parsed.Filters.Time = bucket
			break
		}
	}
	if strings.Contains(lower, "in-person") || strings.Contains(lower, "in person") {
		parsed.Filters.Mode = "in-person"
	} else if strings.Contains(lower, "online") {
		parsed.Filters.Mode = "online"
	} else if strings.Contains(lower, "hybrid") {
		parsed.Filters.Mode = "hybrid"
	}
	if strings.Contains(lower, "open") {
		parsed.Filters.Status = "open"
	}

	return parsed, nil
}

func trimWord(w string) string {
	return strings.Trim(w, ",.?!")
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// extractCourseCode finds an explicit course code in the query, either
// hyphenated ("comsc-110") or as subject word plus number ("math 292").
// Subject words get mapped through subjectPrefixes, so "physc 230"
// resolves to PHYS-230. The code is returned even when the catalog does
// not contain it; the caller diagnoses unknown codes and suggests
// near-misses.
func extractCourseCode(query string) string {
	words := strings.Fields(query)
	for i, word := range words {
		clean := strings.ToUpper(trimWord(word))
		if clean == "" || !hasDigit(clean) {
			continue
		}
		if prefix, number, found := strings.Cut(clean, "-"); found {
			if mapped, ok := subjectPrefixes[strings.ToLower(prefix)]; ok {
				prefix = mapped
			}
			return prefix + "-" + number
		}
		if len(clean) > 4 || i == 0 {
			continue
		}
		prev := strings.ToLower(trimWord(words[i-1]))
		prefix, ok := subjectPrefixes[prev]
		if !ok {
			for subject, mapped := range subjectPrefixes {
				if strings.HasPrefix(prev, subject) {
					prefix = mapped
					ok = true
					break
				}
			}
		}
		if ok {
			return prefix + "-" + clean
		}
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
