package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyJobID        KeyContext = "job_id"
	keyEntityID     KeyContext = "entity_id"
	keyWorkerID     KeyContext = "worker_id"
	keyJobStartTime KeyContext = "job_start_time"
)

// DefaultJobTimeout bounds a job when no timeout is configured
const DefaultJobTimeout = 30 * time.Minute

// JobMetadata holds metadata for a job execution
type JobMetadata struct {
	JobID     uuid.UUID
	EntityID  string
	WorkerID  int
	StartTime time.Time
}

// JobBegin initializes a job context with metadata and timeout.
// The context derives from parentCtx, never from the inbound request.
func JobBegin(parentCtx context.Context, jobID uuid.UUID, entityID string, workerID int, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyJobID, jobID)
	ctx = context.WithValue(ctx, keyEntityID, entityID)
	ctx = context.WithValue(ctx, keyWorkerID, workerID)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// JobEnd executes the job function once with panic recovery.
// Retries belong to the individual idempotent calls inside the job.
func JobEnd(ctx context.Context, jobFunc func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before job execution: %w", ctx.Err())
	}

	return jobFunc(ctx)
}

// GetJobID extracts job ID from context
func GetJobID(ctx context.Context) (uuid.UUID, bool) {
	jobID, ok := ctx.Value(keyJobID).(uuid.UUID)
	return jobID, ok
}

// GetEntityID extracts the recording entity ID from context
func GetEntityID(ctx context.Context) (string, bool) {
	entityID, ok := ctx.Value(keyEntityID).(string)
	return entityID, ok
}

// GetWorkerID extracts worker ID from context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

// GetJobStartTime extracts job start time from context
func GetJobStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// GetJobMetadata extracts all job metadata from context
func GetJobMetadata(ctx context.Context) *JobMetadata {
	jobID, _ := GetJobID(ctx)
	entityID, _ := GetEntityID(ctx)
	startTime, _ := GetJobStartTime(ctx)

	return &JobMetadata{
		JobID:     jobID,
		EntityID:  entityID,
		WorkerID:  GetWorkerID(ctx),
		StartTime: startTime,
	}
}

// StatusError is an upstream HTTP failure with its status code
type StatusError struct {
	Service    string
	StatusCode int
	Err        error
}

// NewStatusError wraps err with the upstream status code
func NewStatusError(service string, statusCode int, err error) *StatusError {
	return &StatusError{Service: service, StatusCode: statusCode, Err: err}
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s returned status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// IsRetryableError checks if an error should trigger a retry.
// Retryable errors include: network errors, timeouts, rate limits and 5xx
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// The job deadline is final
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "unexpected eof") {
		return true
	}

	// API rate limiting
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") {
		return true
	}

	// Temporary failures
	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}
