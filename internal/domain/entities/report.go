package entities

// MIME types of rendered reports
const (
	MimeTypeText = "text/plain"
	MimeTypeHTML = "text/html"
	MimeTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Report is a rendered review ready for delivery
type Report struct {
	Filename string `json:"filename"`
	Body     []byte `json:"-"`
	MimeType string `json:"mime_type"`
}
