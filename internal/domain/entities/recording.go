package entities

import (
	"path"
	"strings"
	"time"
)

// EntityKind distinguishes the kind of recorded session
type EntityKind string

const (
	EntityKindMeeting EntityKind = "meeting"
	EntityKindWebinar EntityKind = "webinar"
)

// Zoom "type" values for webinars; everything else is a meeting
var webinarTypes = map[int]bool{5: true, 6: true, 9: true}

// EntityKindFromType maps the platform's integer session type to a kind
func EntityKindFromType(t int) EntityKind {
	if webinarTypes[t] {
		return EntityKindWebinar
	}
	return EntityKindMeeting
}

// RecordingIdentity identifies the recorded session a notification is about.
// It is read from the webhook payload and never mutated.
type RecordingIdentity struct {
	EntityID        string     `json:"entity_id"`
	Kind            EntityKind `json:"entity_kind"`
	Topic           string     `json:"topic"`
	StartTime       time.Time  `json:"start_time"`
	DurationMinutes int        `json:"duration_minutes"`
	HostEmail       string     `json:"host_email"`
}

// HostName returns the local part of the host email, or "" when unknown
func (r RecordingIdentity) HostName() string {
	local, _, found := strings.Cut(r.HostEmail, "@")
	if !found {
		return ""
	}
	return local
}

// RecordingFileType is the platform's file_type of a recording file
type RecordingFileType string

const (
	RecordingFileTypeTranscript RecordingFileType = "TRANSCRIPT"
	RecordingFileTypeVTT        RecordingFileType = "VTT"
	RecordingFileTypeM4A        RecordingFileType = "M4A"
	RecordingFileTypeMP3        RecordingFileType = "MP3"
	RecordingFileTypeMP4        RecordingFileType = "MP4"
)

// RecordingFileStatusCompleted is the only status a file can be processed in
const RecordingFileStatusCompleted = "completed"

// IsText reports whether the file is a text transcript
func (t RecordingFileType) IsText() bool {
	switch RecordingFileType(strings.ToUpper(string(t))) {
	case RecordingFileTypeTranscript, RecordingFileTypeVTT:
		return true
	}
	return false
}

// IsAudio reports whether the file carries media that needs speech-to-text
func (t RecordingFileType) IsAudio() bool {
	switch RecordingFileType(strings.ToUpper(string(t))) {
	case RecordingFileTypeM4A, RecordingFileTypeMP3, RecordingFileTypeMP4:
		return true
	}
	return false
}

// DownloadReference points at the artifact to fetch. AuthToken is the
// per-event credential and may be empty when a service-level credential is
// used instead.
type DownloadReference struct {
	URL           string            `json:"url"`
	AuthToken     string            `json:"-"`
	FileType      RecordingFileType `json:"file_type"`
	FileExtension string            `json:"file_extension"`
	Size          int64             `json:"size"`
}

// Extension returns a lowercase file extension including the dot
func (d DownloadReference) Extension() string {
	if d.FileExtension != "" {
		return "." + strings.ToLower(strings.TrimPrefix(d.FileExtension, "."))
	}
	if ext := path.Ext(strings.SplitN(d.URL, "?", 2)[0]); ext != "" {
		return strings.ToLower(ext)
	}
	if d.FileType.IsText() {
		return ".vtt"
	}
	return "." + strings.ToLower(string(d.FileType))
}
