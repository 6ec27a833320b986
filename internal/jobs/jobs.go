// Package jobs loads the collected-video job list and applies the validity
// filter that keeps malformed entries out of the worker pool.
package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Job is one video reference to be processed through all stages. Jobs are
// immutable once loaded and are identified uniquely by VideoID.
type Job struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
}

// Valid reports whether the job carries the fields every stage requires.
func (j Job) Valid() bool {
	return strings.TrimSpace(j.VideoID) != "" && strings.TrimSpace(j.URL) != ""
}

type sourceDocument struct {
	Videos []Job `json:"videos"`
}

// LoadSource reads a collected-videos JSON document ({"videos": [...]}).
func LoadSource(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read video source: %w", err)
	}
	var doc sourceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse video source %s: %w", path, err)
	}
	return doc.Videos, nil
}

// Partition splits the loaded jobs into dispatchable jobs and skipped jobs.
// Skipped jobs never reach a worker; they are counted separately by the run
// reporter. Duplicate video IDs keep the first occurrence so a single run
// never has two writers for one cache key.
func Partition(loaded []Job) (valid []Job, skipped []Job) {
	seen := make(map[string]struct{}, len(loaded))
	for _, job := range loaded {
		if !job.Valid() {
			skipped = append(skipped, job)
			continue
		}
		if _, dup := seen[job.VideoID]; dup {
			skipped = append(skipped, job)
			continue
		}
		seen[job.VideoID] = struct{}{}
		valid = append(valid, job)
	}
	return valid, skipped
}
