package review

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
)

type fakeRegistry struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{held: make(map[string]bool)}
}

func (r *fakeRegistry) TryAcquire(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.held[id] {
		return false, nil
	}
	r.held[id] = true
	return true, nil
}

func (r *fakeRegistry) Release(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held, id)
	r.released = append(r.released, id)
	return nil
}

func (r *fakeRegistry) Held(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.held[id]
}

type fakeDownloader struct {
	dir     string
	content string
	size    int64
	err     error
	calls   int
	paths   []string
}

func (d *fakeDownloader) Fetch(_ context.Context, ref entities.DownloadReference) (*entities.Artifact, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	path := filepath.Join(d.dir, fmt.Sprintf("artifact-%d%s", d.calls, ref.Extension()))
	if err := os.WriteFile(path, []byte(d.content), 0o600); err != nil {
		return nil, err
	}
	d.paths = append(d.paths, path)
	size := d.size
	if size == 0 {
		size = int64(len(d.content))
	}
	return &entities.Artifact{Path: path, Size: size, FileType: ref.FileType}, nil
}

type fakeSegmenter struct {
	dir     string
	parts   []string
	cleaned bool
	gotSecs int
}

func (s *fakeSegmenter) Split(_ context.Context, _ string, secs int) ([]entities.TranscriptSegment, func(), error) {
	s.gotSecs = secs
	segments := make([]entities.TranscriptSegment, 0, len(s.parts))
	for i := range s.parts {
		segments = append(segments, entities.TranscriptSegment{
			Index: i,
			Path:  filepath.Join(s.dir, fmt.Sprintf("seg_%05d.m4a", i)),
		})
	}
	return segments, func() { s.cleaned = true }, nil
}

// segmentTranscriber maps segment file names to recognizable text
type segmentTranscriber struct {
	texts map[string]string
}

func (t *segmentTranscriber) Transcribe(_ context.Context, path string) (string, error) {
	if text, ok := t.texts[filepath.Base(path)]; ok {
		return text, nil
	}
	return "", errors.New("unknown segment " + path)
}

type fakeStore struct {
	mu        sync.Mutex
	existing  map[string]bool
	uploads   []*entities.Report
	existsErr error
	uploadErr error
}

func (s *fakeStore) Find(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return nil, s.existsErr
	}
	if key == "" {
		return nil, nil
	}
	var names []string
	for name := range s.existing {
		if strings.Contains(name, key) {
			names = append(names, name)
		}
	}
	for _, r := range s.uploads {
		if strings.Contains(r.Filename, key) {
			names = append(names, r.Filename)
		}
	}
	return names, nil
}

func (s *fakeStore) Upload(_ context.Context, rep *entities.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads = append(s.uploads, rep)
	return "https://drive.example.com/" + rep.Filename, nil
}

func (s *fakeStore) Uploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

type fakeNotifier struct {
	mu       sync.Mutex
	success  []*entities.Report
	failures []string
	attached []*entities.Report
}

func (n *fakeNotifier) NotifySuccess(_ context.Context, _ entities.RecordingIdentity, rep *entities.Report, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.success = append(n.success, rep)
	return nil
}

func (n *fakeNotifier) NotifyFailure(_ context.Context, _ entities.RecordingIdentity, reason string, rep *entities.Report) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, reason)
	n.attached = append(n.attached, rep)
	return nil
}

func newJob(entityID string, fileType entities.RecordingFileType) *entities.ReviewJob {
	return entities.NewReviewJob(
		entities.EventTranscriptCompleted,
		entities.RecordingIdentity{EntityID: entityID, Topic: "Consult", HostEmail: "dr.roe@example.com"},
		entities.DownloadReference{URL: "https://zoom.example.com/rec/" + entityID, AuthToken: "token", FileType: fileType},
	)
}

func assertNoFiles(t *testing.T, paths []string) {
	t.Helper()
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("scratch file %s was not removed", p)
		}
	}
}
