package webhook

import "github.com/johnquangdev/consult-review/internal/domain/entities"

// URLValidationResponse answers the endpoint handshake
type URLValidationResponse struct {
	PlainToken     string `json:"plainToken"`
	EncryptedToken string `json:"encryptedToken"`
}

// StatusResponse reports the intake outcome of a content event
type StatusResponse struct {
	Status entities.IntakeStatus `json:"status"`
	JobID  string                `json:"job_id,omitempty"`
}

// MessageResponse is returned for deliveries that are not acted on
type MessageResponse struct {
	Message entities.IntakeStatus `json:"message"`
}
