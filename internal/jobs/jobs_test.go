package jobs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videos.json")
	payload := `{"videos": [
		{"video_id": "a1", "title": "First", "url": "https://example.com/a1"},
		{"video_id": "b2", "title": "Second", "url": "https://example.com/b2"}
	]}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	loaded, err := LoadSource(path)
	if err != nil {
		t.Fatalf("LoadSource failed: %v", err)
	}
	if len(loaded) != 2 || loaded[0].VideoID != "a1" || loaded[1].Title != "Second" {
		t.Fatalf("unexpected jobs: %+v", loaded)
	}
}

func TestLoadSourceMissingFile(t *testing.T) {
	if _, err := LoadSource(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing source file")
	}
}

func TestLoadSourceMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if _, err := LoadSource(path); err == nil {
		t.Fatal("expected error for malformed source file")
	}
}

func TestPartitionFiltersInvalidJobs(t *testing.T) {
	loaded := []Job{
		{VideoID: "a1", Title: "ok", URL: "https://example.com/a1"},
		{VideoID: "", Title: "no id", URL: "https://example.com/x"},
		{VideoID: "c3", Title: "no url", URL: "  "},
		{VideoID: "d4", Title: "ok", URL: "https://example.com/d4"},
	}

	valid, skipped := Partition(loaded)
	if len(valid) != 2 {
		t.Fatalf("expected 2 valid jobs, got %d", len(valid))
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped jobs, got %d", len(skipped))
	}
	if valid[0].VideoID != "a1" || valid[1].VideoID != "d4" {
		t.Fatalf("unexpected valid jobs: %+v", valid)
	}
}

func TestPartitionDropsDuplicateIDs(t *testing.T) {
	loaded := []Job{
		{VideoID: "a1", URL: "https://example.com/a1"},
		{VideoID: "a1", URL: "https://example.com/a1-again"},
	}
	valid, skipped := Partition(loaded)
	if len(valid) != 1 || len(skipped) != 1 {
		t.Fatalf("expected duplicate to be skipped, got valid=%d skipped=%d", len(valid), len(skipped))
	}
	if valid[0].URL != "https://example.com/a1" {
		t.Fatal("expected first occurrence to win")
	}
}
