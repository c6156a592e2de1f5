package query

import (
	"strings"
)

// dayCodes maps day names and abbreviations to the codes used in a
// meeting's Days field.
var dayCodes = map[string]string{
	"monday": "M", "mon": "M", "m": "M",
	"tuesday": "T", "tue": "T", "tues": "T", "t": "T",
	"wednesday": "W", "wed": "W", "w": "W",
	"thursday": "Th", "thu": "Th", "thur": "Th", "thurs": "Th", "th": "Th",
	"friday": "F", "fri": "F", "f": "F",
}

var timeBuckets = map[string]bool{
	"morning":   true,
	"afternoon": true,
	"evening":   true,
}

// SplitTokens lowercases s and splits it on the natural separators
// " and ", " or ", "," and "/". The second return reports whether " and "
// was present, which selects conjunctive matching.
func SplitTokens(s string) ([]string, bool) {
	low := strings.ToLower(strings.TrimSpace(s))
	requireAll := strings.Contains(low, " and ")

	replacer := strings.NewReplacer(
		" and ", "|",
		" or ", "|",
		",", "|",
		"/", "|",
	)
	var tokens []string
	for _, part := range strings.Split(replacer.Replace(low), "|") {
		part = strings.TrimSpace(part)
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens, requireAll
}

// NormalizeKeywords lowercases course code / subject / title keywords.
// Keywords always combine disjunctively.
func NormalizeKeywords(keywords []string) TokenFilter {
	var tokens []string
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			tokens = append(tokens, kw)
		}
	}
	return TokenFilter{Tokens: tokens}
}

// NormalizeMode turns a free-form modality expression ("online or hybrid")
// into lowered tokens. Widening "in-person" to include hybrid sections is
// the caller's decision, not applied here.
func NormalizeMode(s string) TokenFilter {
	if s == "" {
		return TokenFilter{}
	}
	tokens, _ := SplitTokens(s)
	if len(tokens) == 0 {
		tokens = []string{strings.ToLower(s)}
	}
	return TokenFilter{Tokens: tokens}
}

// NormalizeStatus tokens are matched by substring containment since the
// source status strings are not standardized ("Open, Seats Available",
// "Open, Waitlist", "Clsd").
func NormalizeStatus(s string) TokenFilter {
	if s == "" {
		return TokenFilter{}
	}
	tokens, _ := SplitTokens(s)
	if len(tokens) == 0 {
		tokens = []string{strings.ToLower(s)}
	}
	return TokenFilter{Tokens: tokens}
}

// NormalizeInstructor splits alternatives ("Lo or Julie") into tokens.
// Each alternative may itself be a multi-word name; every word of the
// name must appear in the section's instructor field for it to match.
func NormalizeInstructor(s string) TokenFilter {
	if s == "" {
		return TokenFilter{}
	}
	tokens, _ := SplitTokens(s)
	if len(tokens) == 0 {
		tokens = []string{strings.ToLower(s)}
	}
	return TokenFilter{Tokens: tokens}
}

// NormalizeDay maps day names to codes. Unrecognized tokens pass through
// unchanged and are compared literally against a meeting's Days field.
func NormalizeDay(s string) TokenFilter {
	if s == "" {
		return TokenFilter{}
	}
	tokens, requireAll := SplitTokens(s)
	codes := make([]string, len(tokens))
	for i, tok := range tokens {
		if code, ok := dayCodes[tok]; ok {
			codes[i] = code
		} else {
			codes[i] = tok
		}
	}
	return TokenFilter{Tokens: codes, RequireAll: requireAll}
}

// DayList builds a day filter from already-canonical codes.
func DayList(codes []string) TokenFilter {
	return TokenFilter{Tokens: codes}
}

// NormalizeTime keeps only the recognized part-of-day buckets. If nothing
// survives, the raw token is kept so that it fails to match rather than
// silently deactivating the filter.
func NormalizeTime(s string) TokenFilter {
	if s == "" {
		return TokenFilter{}
	}
	tokens, requireAll := SplitTokens(s)
	var buckets []string
	for _, tok := range tokens {
		if timeBuckets[tok] {
			buckets = append(buckets, tok)
		}
	}
	if len(buckets) == 0 {
		buckets = []string{strings.ToLower(s)}
	}
	return TokenFilter{Tokens: buckets, RequireAll: requireAll}
}

// TimeList builds a time filter from already-canonical bucket names.
func TimeList(buckets []string) TokenFilter {
	return TokenFilter{Tokens: buckets}
}
