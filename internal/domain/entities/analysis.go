package entities

// FrameworkSections is the number of checklist points in the consultation
// framework
const FrameworkSections = 15

// ConsultAnalysis represents the structured output of the language model
// review of a consultation transcript
type ConsultAnalysis struct {
	Provider        string   `json:"provider"`
	Patient         string   `json:"patient"`
	Score           float64  `json:"score"`
	ConsultDuration string   `json:"consult_duration"`
	Summary         string   `json:"summary"`
	Sections        []string `json:"sections"`
	Anomalies       string   `json:"anomalies"`

	// Raw is the model output as returned; it is the whole review in text mode
	Raw string `json:"-"`
	// Degraded is set when the model call failed and Raw explains why
	Degraded bool   `json:"-"`
	Error    string `json:"-"`
}

// NewDegradedAnalysis builds the result used when the model could not be
// reached or answered with an error
func NewDegradedAnalysis(err error) *ConsultAnalysis {
	return &ConsultAnalysis{
		Raw:      "GPT Error: " + err.Error(),
		Degraded: true,
		Error:    err.Error(),
	}
}

// Structured reports whether the analysis carries parsed fields
func (a *ConsultAnalysis) Structured() bool {
	return a != nil && !a.Degraded && (a.Summary != "" || len(a.Sections) > 0)
}

// Text returns the narrative body used by the plain text report
func (a *ConsultAnalysis) Text() string {
	if a == nil {
		return ""
	}
	if a.Raw != "" {
		return a.Raw
	}
	return a.Summary
}
