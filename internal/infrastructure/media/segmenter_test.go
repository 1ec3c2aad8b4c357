package media

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeFFmpeg writes a shell script that stands in for ffmpeg. It creates
// the segments out of order to check sorting.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSplit_OrdersSegmentsAndCleansUp(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `for i in 2 0 1 10; do echo "part $i" > "$(printf "$last" $i)"; done`)
	tempDir := t.TempDir()
	s := NewSegmenter(ffmpeg, tempDir, nil)

	segments, cleanup, err := s.Split(context.Background(), "/tmp/input.M4A", 300)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	want := []string{"seg_00000.m4a", "seg_00001.m4a", "seg_00002.m4a", "seg_00010.m4a"}
	if len(segments) != len(want) {
		t.Fatalf("expected %d segments, got %d", len(want), len(segments))
	}
	for i, seg := range segments {
		if filepath.Base(seg.Path) != want[i] || seg.Index != i {
			t.Fatalf("segment %d = %s (index %d), want %s", i, seg.Path, seg.Index, want[i])
		}
	}

	dir := filepath.Dir(segments[0].Path)
	cleanup()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("segment dir should be removed")
	}
}

func TestSplit_FailureRemovesDir(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `echo "Invalid data found" >&2; exit 1`)
	tempDir := t.TempDir()
	s := NewSegmenter(ffmpeg, tempDir, nil)

	_, cleanup, err := s.Split(context.Background(), "in.mp3", 60)
	if err == nil || !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected ffmpeg error with stderr, got %v", err)
	}
	if cleanup != nil {
		t.Fatalf("cleanup should be nil on error")
	}
	if entries, _ := os.ReadDir(tempDir); len(entries) != 0 {
		t.Fatalf("segment dir leaked: %v", entries)
	}
}

func TestSplit_InvalidLength(t *testing.T) {
	s := NewSegmenter("", t.TempDir(), nil)
	if _, _, err := s.Split(context.Background(), "in.mp3", 0); err == nil {
		t.Fatalf("expected error")
	}
}
