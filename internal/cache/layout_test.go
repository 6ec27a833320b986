package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLayoutPaths(t *testing.T) {
	layout := NewLayout("/data/out")

	cases := []struct {
		got  string
		want string
	}{
		{layout.VideoPath("abc"), "/data/out/raw_videos/abc.mp4"},
		{layout.AudioPath("abc"), "/data/out/audio/abc.wav"},
		{layout.TranscriptPath("abc"), "/data/out/transcripts/abc.json"},
		{layout.FramesDir("abc"), "/data/out/frames/abc"},
		{layout.FramePath("abc", 7), "/data/out/frames/abc/frame_00007s.jpg"},
		{layout.FramePath("abc", 12345), "/data/out/frames/abc/frame_12345s.jpg"},
		{layout.RunLogPath(), "/data/out/processing_log.json"},
		{layout.SummaryPath("abc"), "/data/out/individual/abc/summary.json"},
	}
	for _, tc := range cases {
		if tc.got != filepath.FromSlash(tc.want) {
			t.Fatalf("path mismatch: got %q, want %q", tc.got, tc.want)
		}
	}
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	layout := NewLayout(root)
	if err := layout.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}
	for _, dir := range []string{"raw_videos", "audio", "transcripts", "frames", "reports"} {
		if info, err := os.Stat(filepath.Join(root, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected stage directory %s, err=%v", dir, err)
		}
	}
}

func TestExists(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "present.mp4")
	if Exists(path) {
		t.Fatal("Exists should be false before file is written")
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if !Exists(path) {
		t.Fatal("Exists should be true after file is written")
	}
	if Exists(root) {
		t.Fatal("directories are not cache entries")
	}
}

func TestWriteJSONAtomic(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "transcripts", "abc.json")

	doc := map[string]any{"video_id": "abc", "word_count": 42}
	if err := WriteJSON(path, doc); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["video_id"] != "abc" {
		t.Fatalf("unexpected payload: %v", decoded)
	}

	// No temp droppings left next to the final file.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			t.Fatalf("leftover temp file %s", entry.Name())
		}
	}
}
