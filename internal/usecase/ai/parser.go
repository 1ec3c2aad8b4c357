package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
)

var (
	providerLine = regexp.MustCompile(`Provider:\s*(.+)`)
	scoreNumber  = regexp.MustCompile(`\d+(\.\d+)?`)
	cueNumber    = regexp.MustCompile(`^\d+$`)
)

// Parser handles parsing of model responses and transcript files
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

type rawAnalysis struct {
	Provider        string          `json:"provider"`
	Patient         string          `json:"patient"`
	Score           json.RawMessage `json:"score"`
	ConsultDuration json.RawMessage `json:"consult_duration"`
	Summary         string          `json:"summary"`
	Sections        []string        `json:"sections"`
	Anomalies       json.RawMessage `json:"anomalies"`
}

// ParseAnalysis parses a JSON mode reply. Replies wrapped in markdown fences
// or surrounded by prose are accepted.
func (p *Parser) ParseAnalysis(content string) (*entities.ConsultAnalysis, error) {
	jsonString := ExtractJSON(content)

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(jsonString), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if raw.Summary == "" && len(raw.Sections) == 0 {
		return nil, fmt.Errorf("missing summary and sections in response")
	}

	return &entities.ConsultAnalysis{
		Provider:        strings.TrimSpace(raw.Provider),
		Patient:         strings.TrimSpace(raw.Patient),
		Score:           parseScore(raw.Score),
		ConsultDuration: flexibleString(raw.ConsultDuration),
		Summary:         strings.TrimSpace(raw.Summary),
		Sections:        normalizeSections(raw.Sections),
		Anomalies:       flexibleString(raw.Anomalies),
		Raw:             content,
	}, nil
}

// ParseText wraps a free-form reply; only the provider is extracted
func (p *Parser) ParseText(content string) *entities.ConsultAnalysis {
	return &entities.ConsultAnalysis{
		Provider: ExtractProvider(content),
		Raw:      content,
	}
}

// ExtractProvider returns the name after the first "Provider:" label, or ""
func ExtractProvider(text string) string {
	m := providerLine.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	name := strings.Trim(strings.TrimSpace(m[1]), "*[]_ ")
	return strings.TrimSpace(name)
}

// CleanTranscript turns a WebVTT transcript into one line of text: the
// header, cue timings, cue numbers and blank lines are dropped
func CleanTranscript(vtt string) string {
	lines := strings.Split(strings.ReplaceAll(vtt, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "WEBVTT"):
		case strings.Contains(line, "-->"):
		case cueNumber.MatchString(line):
		default:
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}

// ExtractJSON strips markdown fences and any prose around the outermost
// JSON object
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}

	return strings.TrimSpace(content)
}

func parseScore(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	// "8/10" and similar
	if m := scoreNumber.FindString(flexibleString(raw)); m != "" {
		f, _ = strconv.ParseFloat(m, 64)
	}
	return f
}

// flexibleString accepts a JSON string, number or null
func flexibleString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

func normalizeSections(sections []string) []string {
	out := make([]string, entities.FrameworkSections)
	for i := range out {
		if i < len(sections) && strings.TrimSpace(sections[i]) != "" {
			out[i] = strings.TrimSpace(sections[i])
			continue
		}
		out[i] = NotAddressed
	}
	return out
}
