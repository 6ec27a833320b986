// Package transcript defines the persisted transcript document and its
// cache-file round trip.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"vidmill/internal/cache"
)

// Segment is a time-bounded span of recognized speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Document is the transcript artifact written to transcripts/{video_id}.json.
// It is produced once by the transcription stage and read-only afterward; a
// cache hit re-reads it to recover WordCount and Duration for reporting.
type Document struct {
	VideoID   string    `json:"video_id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Segments  []Segment `json:"segments"`
	WordCount int       `json:"word_count"`
	Duration  float64   `json:"duration"`
}

// New assembles a Document from raw model output. Duration derives from the
// last segment's end time, or 0 when the model produced no segments.
func New(videoID, title, text string, segments []Segment) Document {
	doc := Document{
		VideoID:   videoID,
		Title:     title,
		Text:      text,
		Segments:  segments,
		WordCount: len(strings.Fields(text)),
	}
	if len(segments) > 0 {
		doc.Duration = segments[len(segments)-1].End
	}
	return doc
}

// Load reads a transcript document from a cache entry.
func Load(path string) (Document, error) {
	var doc Document
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read transcript: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	return doc, nil
}

// Save persists the document at path using the cache's atomic-write
// discipline.
func Save(path string, doc Document) error {
	return cache.WriteJSON(path, doc)
}
