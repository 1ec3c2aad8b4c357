// Package media splits long recordings into pieces small enough for
// speech-to-text uploads.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
)

const segmentPrefix = "seg_"

// Segmenter cuts media with ffmpeg's segment muxer without re-encoding
type Segmenter struct {
	ffmpegPath string
	tempDir    string
	logger     *zap.Logger
}

// NewSegmenter creates a segmenter. An empty ffmpegPath means "ffmpeg" on
// PATH; an empty tempDir uses os.TempDir.
func NewSegmenter(ffmpegPath, tempDir string, logger *zap.Logger) *Segmenter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Segmenter{ffmpegPath: ffmpegPath, tempDir: tempDir, logger: logger}
}

// Split writes segments of segmentSeconds each into a fresh directory and
// returns them in chronological order. cleanup removes the directory.
func (s *Segmenter) Split(ctx context.Context, path string, segmentSeconds int) ([]entities.TranscriptSegment, func(), error) {
	if segmentSeconds <= 0 {
		return nil, nil, fmt.Errorf("segment length must be positive, got %d", segmentSeconds)
	}

	dir, err := os.MkdirTemp(s.tempDir, "segments-*")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create segment dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("⚠️ Failed to remove segment dir", zap.String("dir", dir), zap.Error(err))
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	pattern := filepath.Join(dir, segmentPrefix+"%05d"+ext)
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-f", "segment",
		"-segment_time", strconv.Itoa(segmentSeconds),
		"-c", "copy",
		"-reset_timestamps", "1",
		pattern,
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	// ReadDir sorts by name; zero padding keeps that chronological
	entries, err := os.ReadDir(dir)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to list segments: %w", err)
	}

	segments := make([]entities.TranscriptSegment, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), segmentPrefix) {
			continue
		}
		segments = append(segments, entities.TranscriptSegment{
			Index: len(segments),
			Path:  filepath.Join(dir, e.Name()),
		})
	}
	if len(segments) == 0 {
		cleanup()
		return nil, nil, fmt.Errorf("ffmpeg produced no segments")
	}

	return segments, cleanup, nil
}
