package entities

import "errors"

// Domain errors
var (
	// Intake errors
	ErrNoRecordingFile      = errors.New("no completed recording file of an accepted type")
	ErrMissingEntityID      = errors.New("missing entity id")
	ErrMissingDownloadURL   = errors.New("missing download url")
	ErrQueueFull            = errors.New("review queue is full")
	ErrDispatcherStopped    = errors.New("dispatcher stopped")
	ErrDispatcherNotStarted = errors.New("dispatcher not started")

	// Pipeline errors
	ErrDownloadFailed     = errors.New("artifact download failed")
	ErrSegmentationFailed = errors.New("artifact segmentation failed")
	ErrEmptyTranscript    = errors.New("transcript is empty")
	ErrMissingCredential  = errors.New("download credential unavailable")
)
