package assistant

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

type codeSuggestion struct {
	code       string
	similarity float64
}

// suggestCourseCodes returns catalog course codes similar to the input,
// best first. Exact matches are excluded since the caller only asks
// after a search came up empty.
func suggestCourseCodes(input string, known []string, max int) []string {
	input = strings.ToUpper(strings.TrimSpace(input))
	if input == "" {
		return nil
	}

	var candidates []codeSuggestion
	for _, code := range known {
		upper := strings.ToUpper(code)
		if upper == input {
			continue
		}
		similarity := matchr.JaroWinkler(input, upper, true)
		if similarity < 0.75 {
			continue
		}
		candidates = append(candidates, codeSuggestion{code: upper, similarity: similarity})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})

	if len(candidates) > max {
		candidates = candidates[:max]
	}
	codes := make([]string, len(candidates))
	for i, c := range candidates {
		codes[i] = c.code
	}
	return codes
}
