package entities

import (
	"time"

	"github.com/google/uuid"
)

// ReviewJobStatus represents the status of a review job
type ReviewJobStatus string

const (
	ReviewJobStatusQueued      ReviewJobStatus = "queued"      // Accepted by the webhook, waiting for a worker
	ReviewJobStatusDownloading ReviewJobStatus = "downloading" // Fetching the recording artifact
	ReviewJobStatusAnalyzing   ReviewJobStatus = "analyzing"   // Speech-to-text and model analysis
	ReviewJobStatusDelivering  ReviewJobStatus = "delivering"  // Uploading and mailing the report
	ReviewJobStatusCompleted   ReviewJobStatus = "completed"   // Report delivered
	ReviewJobStatusDuplicate   ReviewJobStatus = "duplicate"   // A report for the entity already existed
	ReviewJobStatusDegraded    ReviewJobStatus = "degraded"    // Model failed, failure report mailed
	ReviewJobStatusFailed      ReviewJobStatus = "failed"      // Pipeline aborted
)

// ReviewJob is one background run of the review pipeline for a recording.
// It lives only in memory for the duration of the run.
type ReviewJob struct {
	ID         uuid.UUID         `json:"id"`
	Event      string            `json:"event"`
	Identity   RecordingIdentity `json:"identity"`
	Download   DownloadReference `json:"download"`
	Status     ReviewJobStatus   `json:"status"`
	ReceivedAt time.Time         `json:"received_at"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	LastError   *string    `json:"last_error,omitempty"`
}

// NewReviewJob creates a queued review job
func NewReviewJob(event string, identity RecordingIdentity, download DownloadReference) *ReviewJob {
	return &ReviewJob{
		ID:         uuid.New(),
		Event:      event,
		Identity:   identity,
		Download:   download,
		Status:     ReviewJobStatusQueued,
		ReceivedAt: time.Now(),
	}
}

// EntityKey is the idempotence key of the job
func (j *ReviewJob) EntityKey() string {
	return j.Identity.EntityID
}

// MarkAs moves the job to an intermediate stage
func (j *ReviewJob) MarkAs(status ReviewJobStatus) {
	if j.StartedAt == nil {
		now := time.Now()
		j.StartedAt = &now
	}
	j.Status = status
}

// MarkAsFinished marks job as done with a terminal status
func (j *ReviewJob) MarkAsFinished(status ReviewJobStatus) {
	j.Status = status
	now := time.Now()
	j.CompletedAt = &now
}

// MarkAsFailed marks job as failed with error message
func (j *ReviewJob) MarkAsFailed(errMsg string) {
	j.LastError = &errMsg
	j.MarkAsFinished(ReviewJobStatusFailed)
}

// IsTerminal reports whether the job reached a final status
func (j *ReviewJob) IsTerminal() bool {
	switch j.Status {
	case ReviewJobStatusCompleted, ReviewJobStatusDuplicate, ReviewJobStatusDegraded, ReviewJobStatusFailed:
		return true
	}
	return false
}

// Elapsed returns the processing time so far
func (j *ReviewJob) Elapsed() time.Duration {
	if j.StartedAt == nil {
		return 0
	}
	if j.CompletedAt != nil {
		return j.CompletedAt.Sub(*j.StartedAt)
	}
	return time.Since(*j.StartedAt)
}
