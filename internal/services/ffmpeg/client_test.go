package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// captureArgs records the invoked command line and stands in a stub that
// writes the tool's output file, since both operations finalize by rename.
func captureArgs(t *testing.T) *[]string {
	t.Helper()
	var captured []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		captured = append([]string{name}, args...)
		out := args[len(args)-1]
		return exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("printf x > %q", out))
	}
	t.Cleanup(func() { commandContext = original })
	return &captured
}

// failAfterPartialWrite stands in a stub that leaves bytes at the tool's
// output path and exits non-zero, like a transcode dying mid-write.
func failAfterPartialWrite(t *testing.T) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		out := args[len(args)-1]
		return exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("printf RIFFpartial > %q; exit 1", out))
	}
	t.Cleanup(func() { commandContext = original })
}

func TestExtractAudioArguments(t *testing.T) {
	captured := captureArgs(t)

	dest := filepath.Join(t.TempDir(), "out.wav")
	cli := NewCLI(WithBinary("/usr/bin/ffmpeg"))
	if err := cli.ExtractAudio(context.Background(), "in.mp4", dest); err != nil {
		t.Fatalf("ExtractAudio returned error: %v", err)
	}

	joined := strings.Join(*captured, " ")
	for _, want := range []string{"/usr/bin/ffmpeg", "-vn", "-ac 1", "-ar 16000", "pcm_s16le", "-f wav", partialPath(dest)} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in command %q", want, joined)
		}
	}
	if !strings.HasSuffix(joined, partialPath(dest)) {
		t.Fatalf("tool must target the temp path, got %q", joined)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected finalized output at %s: %v", dest, err)
	}
}

func TestExtractAudioRequiresPaths(t *testing.T) {
	cli := NewCLI()
	if err := cli.ExtractAudio(context.Background(), "", "out.wav"); err == nil {
		t.Fatal("expected error when source is empty")
	}
	if err := cli.ExtractAudio(context.Background(), "in.mp4", ""); err == nil {
		t.Fatal("expected error when destination is empty")
	}
}

func TestExtractAudioFailureLeavesNoPartialFile(t *testing.T) {
	failAfterPartialWrite(t)

	dest := filepath.Join(t.TempDir(), "vid-x.wav")
	cli := NewCLI()
	if err := cli.ExtractAudio(context.Background(), "in.mp4", dest); err == nil {
		t.Fatal("expected error from failed extraction")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("partial output survives at final path %s", dest)
	}
	if _, err := os.Stat(partialPath(dest)); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind at %s", partialPath(dest))
	}
}

func TestGrabFrameArguments(t *testing.T) {
	captured := captureArgs(t)

	cli := NewCLI()
	out := filepath.Join(t.TempDir(), "frames", "frame_00017s.jpg")
	if err := cli.GrabFrame(context.Background(), "in.mp4", 17, out); err != nil {
		t.Fatalf("GrabFrame returned error: %v", err)
	}

	joined := strings.Join(*captured, " ")
	for _, want := range []string{"-ss 17", "-frames:v 1", "-f image2", partialPath(out)} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in command %q", want, joined)
		}
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected finalized frame at %s: %v", out, err)
	}
}

func TestGrabFrameFailureLeavesNoPartialFile(t *testing.T) {
	failAfterPartialWrite(t)

	cli := NewCLI()
	out := filepath.Join(t.TempDir(), "frames", "frame_00005s.jpg")
	if err := cli.GrabFrame(context.Background(), "in.mp4", 5, out); err == nil {
		t.Fatal("expected error from failed capture")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("partial frame survives at final path %s", out)
	}
	if _, err := os.Stat(partialPath(out)); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind at %s", partialPath(out))
	}
}

func TestGrabFrameRejectsNegativeSecond(t *testing.T) {
	cli := NewCLI()
	if err := cli.GrabFrame(context.Background(), "in.mp4", -1, "out.jpg"); err == nil {
		t.Fatal("expected error for negative timestamp")
	}
}
