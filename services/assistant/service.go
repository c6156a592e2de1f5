// Package assistant answers natural-language course questions. A parser
// collaborator turns the question into a structured filter request, the
// query engine runs it against the catalog, and a formatter collaborator
// renders the filtered results back to prose. Every interaction is
// written to the chat log.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coursefinder-backend/lib/catalog"
	"coursefinder-backend/lib/chatlog"
	"coursefinder-backend/lib/query"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/assistant")

type Service struct {
	store     *catalog.Store
	engine    query.Engine
	parser    QueryParser
	formatter Formatter
	heuristic HeuristicParser
	fallback  TextFormatter
	log       *chatlog.Store
}

// NewService wires the assistant. parser and formatter may be the LLM
// implementations or the deterministic ones; either way the heuristic
// parser and text formatter stay available as failure fallbacks. log may
// be nil to disable interaction logging.
func NewService(store *catalog.Store, parser QueryParser, formatter Formatter, log *chatlog.Store) Service {
	return Service{
		store:     store,
		engine:    query.NewEngine(store),
		parser:    parser,
		formatter: formatter,
		heuristic: NewHeuristicParser(store),
		log:       log,
	}
}

const guidanceResponse = `I can help you find courses and details like sections, instructors, and prerequisites.

Try one of these:
- "Show me open MATH-193 sections Monday morning."
- "Who teaches PHYS-130 on Thursdays?"
- "What are the prerequisites for COMSC-200?"
- "Show online COMSC classes."

Please include a subject (e.g., COMSC, MATH, PHYS, CHEM, BIOSC, ENGIN) or a specific course code (e.g., COMSC-110).`

// Ask answers one user question end to end.
func (s Service) Ask(ctx context.Context, userQuery string) (string, error) {
	ctx, span := tracer.Start(ctx, "Ask")
	defer span.End()

	requestId, err := random.String(8)
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.String("request_id", requestId))

	parsed, err := s.parser.Parse(ctx, userQuery)
	if err != nil {
		slog.WarnContext(ctx, "query parse failed, using heuristics",
			"request_id", requestId, "err", err)
		parsed, _ = s.heuristic.Parse(ctx, userQuery)
	}
	applyQueryFallbacks(userQuery, &parsed)

	response, err := s.answer(ctx, userQuery, parsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to answer query")
		return "", err
	}

	s.logInteraction(ctx, requestId, userQuery, parsed, response)
	return response, nil
}

func (s Service) answer(ctx context.Context, userQuery string, parsed ParsedQuery) (string, error) {
	if len(parsed.CourseCodes) == 0 && len(parsed.Subjects) == 0 {
		return guidanceResponse, nil
	}

	if parsed.Intent == IntentPrerequisites {
		return s.answerPrerequisites(ctx, parsed), nil
	}

	req := buildRequest(parsed)
	results := s.engine.Search(ctx, req)
	if len(results) == 0 {
		return s.diagnoseEmpty(ctx, parsed, req), nil
	}

	response, err := s.formatter.Format(ctx, userQuery, parsed, results)
	if err != nil {
		slog.WarnContext(ctx, "formatter failed, using text fallback", "err", err)
		return s.fallback.Format(ctx, userQuery, parsed, results)
	}
	return response, nil
}

// applyQueryFallbacks patches parser blind spots straight from the raw
// query text: "available" phrasing means open sections, and an
// instructor can be named with only a title prefix ("prof Julie").
func applyQueryFallbacks(userQuery string, parsed *ParsedQuery) {
	lower := strings.ToLower(userQuery)
	if parsed.Filters.Status == "" {
		if strings.Contains(lower, "avail") || strings.Contains(lower, "avaliable") {
			parsed.Filters.Status = "open"
		}
	}

	if parsed.Filters.Instructor == "" {
		titles := map[string]bool{
			"professor": true, "prof": true, "dr": true,
			"instructor": true, "teacher": true,
		}
		words := strings.Fields(userQuery)
		for i, w := range words {
			if titles[strings.ToLower(trimWord(w))] && i+1 < len(words) {
				parsed.Filters.Instructor = trimWord(words[i+1])
				break
			}
		}
	}
}

// buildRequest lowers a parsed query into an engine request. Asking for
// in-person widens to hybrid, since hybrid sections hold in-person
// meetings too.
func buildRequest(parsed ParsedQuery) query.Request {
	keywords := parsed.CourseCodes
	if len(keywords) == 0 {
		keywords = parsed.Subjects
	}

	req := query.Request{
		Keywords:   query.NormalizeKeywords(keywords),
		Status:     query.NormalizeStatus(parsed.Filters.Status),
		Instructor: query.NormalizeInstructor(parsed.Filters.Instructor),
		Day:        query.NormalizeDay(parsed.Filters.Day),
		Time:       query.NormalizeTime(parsed.Filters.Time),
	}
	if strings.EqualFold(strings.TrimSpace(parsed.Filters.Mode), "in-person") {
		req.Mode = query.Tokens("in-person", "hybrid")
	} else {
		req.Mode = query.NormalizeMode(parsed.Filters.Mode)
	}
	if req.Day.RequireAll && req.Time.RequireAll &&
		len(req.Day.Tokens) > 1 && len(req.Time.Tokens) > 1 {
		req.PairDayTime = true
	}
	return req
}

func (s Service) answerPrerequisites(ctx context.Context, parsed ParsedQuery) string {
	keywords := parsed.CourseCodes
	if len(keywords) == 0 {
		keywords = parsed.Subjects
	}
	results := s.engine.Search(ctx, query.Request{
		Keywords: query.NormalizeKeywords(keywords),
	})
	if len(results) == 0 {
		return fmt.Sprintf("I couldn't find any courses for **%s**.\n"+
			"Double-check the course code or subject, or try another course (e.g., COMSC-110, MATH-193).",
			strings.Join(keywords, ", "))
	}

	chosen := results[0]
	for _, result := range results {
		if containsString(parsed.CourseCodes, strings.ToUpper(result.CourseCode)) {
			chosen = result
			break
		}
	}
	prereqs := chosen.Prerequisites
	if prereqs == "" {
		prereqs = "No prerequisites listed"
	}
	return fmt.Sprintf("**%s: %s**\n\nPrerequisites: %s", chosen.CourseCode, chosen.CourseTitle, prereqs)
}

// diagnoseEmpty distinguishes "the course does not exist" from "the
// filters were too strict" by re-running the search with keywords only.
func (s Service) diagnoseEmpty(ctx context.Context, parsed ParsedQuery, req query.Request) string {
	baseline := s.engine.Search(ctx, query.Request{Keywords: req.Keywords})
	keyword := keywordDisplay(parsed)

	if len(baseline) == 0 {
		response := fmt.Sprintf("I couldn't find any courses for **%s**.\n"+
			"Please check the subject or course code, or try a broader query.", keyword)
		var suggestions []string
		for _, code := range parsed.CourseCodes {
			suggestions = append(suggestions, suggestCourseCodes(code, s.store.CourseCodes(), 3)...)
		}
		if len(suggestions) > 0 {
			response += "\n\nDid you mean: " + strings.Join(suggestions, ", ") + "?"
		}
		return response
	}

	applied := appliedFilters(parsed)
	appliedStr := "none"
	if len(applied) > 0 {
		appliedStr = strings.Join(applied, ", ")
	}
	return fmt.Sprintf("I found no sections with your current filters (%s) for **%s**.\n\n"+
		"Try relaxing one or more filters:\n"+
		"- Remove the instructor name to see all sections\n"+
		"- Try a different day or time window\n"+
		"- Include hybrid or online if you only searched in-person",
		appliedStr, keyword)
}

func (s Service) logInteraction(ctx context.Context, requestId, prompt string, parsed ParsedQuery, response string) {
	if s.log == nil {
		return
	}
	parsedJson, err := json.Marshal(parsed)
	if err != nil {
		parsedJson = []byte("{}")
	}
	err = s.log.Push(ctx, chatlog.Entry{
		RequestID: requestId,
		Time:      time.Now(),
		Prompt:    prompt,
		Parsed:    string(parsedJson),
		Response:  response,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to log interaction",
			"request_id", requestId, "err", err)
	}
}
