// Package catalog holds the in-memory course catalog: the courses, their
// sections and meetings for one academic term, loaded once from the
// scraper's JSON output and never mutated afterwards.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type Meeting struct {
	// Days holds zero or more of M, T, W, Th, F. The scraper separates
	// tokens with spaces but older dumps concatenate them ("TTh"), so
	// matching is substring-based. "Online" marks no fixed day.
	Days string `json:"days"`
	// Time is either a range like "8:30AM - 11:00AM", the sentinel
	// "Asynchronous", or empty.
	Time   string `json:"time"`
	Room   string `json:"room"`
	Format string `json:"format"`
}

type Section struct {
	SectionNumber string    `json:"section_number"`
	Instructor    string    `json:"instructor"`
	Status        string    `json:"status"`
	Meetings      []Meeting `json:"meetings"`
}

type Course struct {
	CourseCode    string    `json:"course_code"`
	CourseTitle   string    `json:"course_title"`
	Prerequisites string    `json:"prerequisites,omitempty"`
	LastUpdate    string    `json:"last_update,omitempty"`
	Sections      []Section `json:"sections"`
}

// Load decodes a catalog JSON array. Sections missing status, instructor
// or meetings decode to zero values; they are not an error.
func Load(r io.Reader) ([]Course, error) {
	var courses []Course
	dec := json.NewDecoder(r)
	err := dec.Decode(&courses)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return courses, nil
}

func LoadFile(path string) ([]Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}
