// Package webhook holds the wire shapes of conferencing platform webhooks
package webhook

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
)

// Request is the envelope of every delivery
type Request struct {
	Event         string          `json:"event" validate:"required"`
	EventTS       int64           `json:"event_ts"`
	DownloadToken string          `json:"download_token"`
	Payload       json.RawMessage `json:"payload"`
}

// URLValidationPayload is the payload of an endpoint.url_validation event
type URLValidationPayload struct {
	PlainToken string `json:"plainToken" validate:"required"`
}

// RecordingPayload is the payload of recording events
type RecordingPayload struct {
	AccountID     string          `json:"account_id"`
	DownloadToken string          `json:"download_token"`
	Object        RecordingObject `json:"object"`
}

// RecordingObject describes the recorded meeting or webinar
type RecordingObject struct {
	ID             FlexibleID      `json:"id"`
	UUID           string          `json:"uuid"`
	Topic          string          `json:"topic"`
	Type           int             `json:"type"`
	StartTime      string          `json:"start_time"`
	Duration       int             `json:"duration"`
	HostEmail      string          `json:"host_email"`
	RecordingFiles []RecordingFile `json:"recording_files"`
}

// RecordingFile is one file of a recording
type RecordingFile struct {
	ID            string `json:"id"`
	FileType      string `json:"file_type"`
	FileExtension string `json:"file_extension"`
	FileSize      int64  `json:"file_size"`
	DownloadURL   string `json:"download_url"`
	Status        string `json:"status"`
	RecordingType string `json:"recording_type"`
}

// FlexibleID accepts an id sent either as a JSON number or a string
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexibleID(n.String())
	return nil
}

// PlainToken returns the handshake token when payload carries one
func (r Request) PlainToken() string {
	var p URLValidationPayload
	if len(r.Payload) == 0 || json.Unmarshal(r.Payload, &p) != nil {
		return ""
	}
	return p.PlainToken
}

// IsURLValidation reports whether the delivery is the endpoint handshake
func (r Request) IsURLValidation() bool {
	return r.Event == entities.EventURLValidation || r.PlainToken() != ""
}

// Token returns the per-event download token. Zoom sends it at the envelope
// level; some deliveries nest it in the payload.
func (r Request) Token(p RecordingPayload) string {
	if r.DownloadToken != "" {
		return r.DownloadToken
	}
	return p.DownloadToken
}

// Identity converts the object into the domain identity. The entity is the
// recorded session: its uuid, since recurring meetings and personal rooms
// reuse the numeric id. The id is used only when the uuid is missing.
func (o RecordingObject) Identity() entities.RecordingIdentity {
	id := strings.TrimSpace(o.UUID)
	if id == "" {
		id = strings.TrimSpace(string(o.ID))
		if id == "0" {
			id = ""
		}
	}
	start, _ := time.Parse(time.RFC3339, o.StartTime)
	return entities.RecordingIdentity{
		EntityID:        id,
		Kind:            entities.EntityKindFromType(o.Type),
		Topic:           o.Topic,
		StartTime:       start,
		DurationMinutes: o.Duration,
		HostEmail:       o.HostEmail,
	}
}

// audioPreference orders audio types from smallest to largest upload
var audioPreference = []entities.RecordingFileType{
	entities.RecordingFileTypeM4A,
	entities.RecordingFileTypeMP3,
	entities.RecordingFileTypeMP4,
}

// SelectFile picks the file to review: a completed transcript first, then
// completed audio when audio is enabled
func SelectFile(files []RecordingFile, audioEnabled bool) (RecordingFile, bool) {
	for _, f := range files {
		if f.completed() && f.Type().IsText() {
			return f, true
		}
	}
	if !audioEnabled {
		return RecordingFile{}, false
	}
	for _, want := range audioPreference {
		for _, f := range files {
			if f.completed() && f.Type() == want {
				return f, true
			}
		}
	}
	return RecordingFile{}, false
}

// Type returns the normalized file type
func (f RecordingFile) Type() entities.RecordingFileType {
	return entities.RecordingFileType(strings.ToUpper(strings.TrimSpace(f.FileType)))
}

func (f RecordingFile) completed() bool {
	return strings.EqualFold(f.Status, entities.RecordingFileStatusCompleted)
}

// Reference builds the download reference for the file
func (f RecordingFile) Reference(token string) entities.DownloadReference {
	return entities.DownloadReference{
		URL:           f.DownloadURL,
		AuthToken:     token,
		FileType:      f.Type(),
		FileExtension: f.FileExtension,
		Size:          f.FileSize,
	}
}
