// Package articulation maps completed DVC courses against UC transfer
// articulation agreements. An agreement lists, per UC course, the DVC
// course combinations that articulate to it.
package articulation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Requirement struct {
	UCCourse string `json:"uc_course"`
	// Options are alternative DVC course combinations. Any one option
	// satisfies the requirement; every course inside an option is
	// needed.
	Options [][]string `json:"dvc_courses"`
}

type Agreement struct {
	Campus       string        `json:"campus"`
	Major        string        `json:"major"`
	Requirements []Requirement `json:"requirements"`
}

// LoadDir reads every agreement JSON file in dir, sorted by filename so
// evaluation output is stable.
func LoadDir(dir string) ([]Agreement, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var agreements []Agreement
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read agreement %s: %w", path, err)
		}
		var a Agreement
		err = json.Unmarshal(data, &a)
		if err != nil {
			return nil, fmt.Errorf("parse agreement %s: %w", path, err)
		}
		agreements = append(agreements, a)
	}
	if len(agreements) == 0 {
		return nil, fmt.Errorf("no agreements found in %s", dir)
	}
	return agreements, nil
}

type Match struct {
	UCCourse string   `json:"uc_course"`
	Using    []string `json:"using"`
}

type Evaluation struct {
	Campus    string   `json:"campus"`
	Major     string   `json:"major"`
	Satisfied []Match  `json:"satisfied"`
	Missing   []string `json:"missing"`
}

func canon(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluate reports which of the agreement's requirements the completed
// courses satisfy. Course codes are compared case-insensitively. The
// first satisfied option wins, in agreement order.
func (a Agreement) Evaluate(completed []string) Evaluation {
	done := make(map[string]bool, len(completed))
	for _, c := range completed {
		done[canon(c)] = true
	}

	eval := Evaluation{Campus: a.Campus, Major: a.Major}
	for _, req := range a.Requirements {
		matched := false
		for _, option := range req.Options {
			if len(option) == 0 {
				continue
			}
			all := true
			for _, course := range option {
				if !done[canon(course)] {
					all = false
					break
				}
			}
			if all {
				eval.Satisfied = append(eval.Satisfied, Match{
					UCCourse: req.UCCourse,
					Using:    option,
				})
				matched = true
				break
			}
		}
		if !matched {
			eval.Missing = append(eval.Missing, req.UCCourse)
		}
	}
	return eval
}

// EvaluateAll runs Evaluate over every agreement.
func EvaluateAll(agreements []Agreement, completed []string) []Evaluation {
	evals := make([]Evaluation, len(agreements))
	for i, a := range agreements {
		evals[i] = a.Evaluate(completed)
	}
	return evals
}
