package dvc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"coursefinder-backend/lib/catalog"
)

// MergeDir combines the per-course JSON documents in dir into one catalog
// slice. Files that fail to parse are skipped with a warning, matching
// how partial scrapes are handled everywhere else.
func MergeDir(dir string) ([]catalog.Course, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)

	var combined []catalog.Course
	for _, path := range entries {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("skipping unreadable catalog file", "path", path, "err", err)
			continue
		}

		// a file may hold either one course object or an array
		var course catalog.Course
		if err := json.Unmarshal(data, &course); err == nil && course.CourseCode != "" {
			combined = append(combined, course)
			continue
		}
		var courses []catalog.Course
		if err := json.Unmarshal(data, &courses); err == nil {
			combined = append(combined, courses...)
			continue
		}
		slog.Warn("skipping unparsable catalog file", "path", path)
	}

	if len(combined) == 0 {
		return nil, fmt.Errorf("no catalog records found in %s", dir)
	}
	return combined, nil
}

// WriteCatalog writes the merged catalog as indented JSON.
func WriteCatalog(path string, courses []catalog.Course) error {
	data, err := json.MarshalIndent(courses, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0666)
}
