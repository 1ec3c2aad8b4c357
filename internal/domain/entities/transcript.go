package entities

// TranscriptSegment is one chronological slice of a recording. Index orders
// segments; Path is the scratch file and Text is filled after transcription.
type TranscriptSegment struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
	Text  string `json:"text,omitempty"`
}

// Artifact is the downloaded source file of a review job
type Artifact struct {
	Path     string
	Size     int64
	FileType RecordingFileType
}

// IsText reports whether the artifact is a text transcript
func (a Artifact) IsText() bool {
	return a.FileType.IsText()
}
