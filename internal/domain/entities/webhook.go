package entities

import "encoding/json"

// Webhook event names sent by the conferencing platform
const (
	EventURLValidation       = "endpoint.url_validation"
	EventRecordingCompleted  = "recording.completed"
	EventTranscriptCompleted = "recording.transcript_completed"
)

// WebhookEvent is an inbound notification. Payload stays opaque until the
// event has been classified.
type WebhookEvent struct {
	Event   string          `json:"event"`
	EventTS int64           `json:"event_ts,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// IntakeStatus is the outcome the webhook handler reports to the caller
type IntakeStatus string

const (
	IntakeStatusIgnored           IntakeStatus = "ignored"
	IntakeStatusProcessingStarted IntakeStatus = "processing_started"
	IntakeStatusInProgress        IntakeStatus = "already_in_progress"
)
