package review

import (
	"context"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
)

// Registry tracks entities whose review is currently running. TryAcquire
// and Release must be atomic with respect to each other.
type Registry interface {
	TryAcquire(ctx context.Context, entityID string) (bool, error)
	Release(ctx context.Context, entityID string) error
}

// Downloader fetches a recording artifact into a scratch file. The caller
// removes the file.
type Downloader interface {
	Fetch(ctx context.Context, ref entities.DownloadReference) (*entities.Artifact, error)
}

// Segmenter splits a media file into fixed-duration pieces in chronological
// order. cleanup removes every piece and is never nil when err is nil.
type Segmenter interface {
	Split(ctx context.Context, path string, segmentSeconds int) (segments []entities.TranscriptSegment, cleanup func(), err error)
}

// Analyzer runs speech-to-text and the framework analysis
type Analyzer interface {
	Transcribe(ctx context.Context, segments []entities.TranscriptSegment) (string, error)
	Analyze(ctx context.Context, transcript string) *entities.ConsultAnalysis
}

// ReportStore is the shared destination of rendered reports
type ReportStore interface {
	// Find returns the names of reports whose name contains entityKey
	Find(ctx context.Context, entityKey string) ([]string, error)
	// Upload stores the report and returns a link or object path
	Upload(ctx context.Context, report *entities.Report) (string, error)
}

// Notifier mails the outcome of a review
type Notifier interface {
	NotifySuccess(ctx context.Context, identity entities.RecordingIdentity, report *entities.Report, location string) error
	// NotifyFailure is sent instead of the success mail. report may be nil.
	NotifyFailure(ctx context.Context, identity entities.RecordingIdentity, reason string, report *entities.Report) error
}
