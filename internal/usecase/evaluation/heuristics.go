// Package evaluation scores a consultation transcript with a fixed set of
// pattern checks. Evaluate is pure: the same text always gives the same
// result.
package evaluation

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
)

const (
	// WordsPerMinute is the assumed speech rate
	WordsPerMinute = 150
	// MinConsultMinutes is the shortest consult that is not flagged
	MinConsultMinutes = 20
	// SummaryRunes caps the summary excerpt
	SummaryRunes = 1500

	providerLabel = "Provider:"
	patientLabel  = "Patient:"
)

// Issue names, in the order they are reported
const (
	IssueProbingQuestions = "Missing probing questions"
	IssueAncillaryMeds    = "No ancillary meds"
	IssueDosagePlan       = "No dosage/treatment plan"
	IssueVerification     = "No address/phone verification"
)

type check struct {
	pattern *regexp.Regexp
	issue   string
}

var (
	requiredChecks = []check{
		{regexp.MustCompile(`(?i)goal|objective`), IssueProbingQuestions},
		{regexp.MustCompile(`(?i)ancillary|supplement`), IssueAncillaryMeds},
		{regexp.MustCompile(`(?i)\d+ ?(mg|ml)|daily|weekly`), IssueDosagePlan},
		{regexp.MustCompile(`(?i)verify.*(address|phone)`), IssueVerification},
	}

	patientQuestion = regexp.MustCompile(`(?i)Patient: (.*\?)`)
	hostility       = regexp.MustCompile(`(?i)(yell|argue|angry|hostile)`)
	speakerLabel    = regexp.MustCompile(`(?i)(?:^|\s+)(patient|provider):`)
)

// Evaluate runs every check over the transcript text
func Evaluate(text string) entities.EvaluationResult {
	words := len(strings.Fields(text))
	minutes := float64(words) / WordsPerMinute

	issues := Issues(text)

	return entities.EvaluationResult{
		Proceed:             len(issues) == 0,
		DurationFlag:        minutes < MinConsultMinutes,
		BehaviorFlag:        hostility.MatchString(text),
		Issues:              issues,
		UnansweredQuestions: UnansweredQuestions(text),
		SummaryText:         truncateRunes(text, SummaryRunes),
		WordCount:           words,
		EstimatedMinutes:    minutes,
	}
}

// Issues returns the name of every required topic missing from text
func Issues(text string) []string {
	issues := make([]string, 0, len(requiredChecks))
	for _, c := range requiredChecks {
		if !c.pattern.MatchString(text) {
			issues = append(issues, c.issue)
		}
	}
	return issues
}

// UnansweredQuestions returns the patient questions that do not reappear in
// the last provider turn. The result is sorted and deduplicated.
func UnansweredQuestions(text string) []string {
	lines := turns(text)
	tail := answerTail(lines)
	if tail == "" {
		tail = text
	}

	seen := make(map[string]bool)
	unanswered := []string{}
	for _, line := range lines {
		m := patientQuestion.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		q := m[1]
		if seen[q] {
			continue
		}
		seen[q] = true

		answered := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(q))
		if !answered.MatchString(tail) {
			unanswered = append(unanswered, q)
		}
	}
	sort.Strings(unanswered)
	return unanswered
}

// turns puts every speaker label on its own line. Cleaned transcripts arrive
// as a single line.
func turns(text string) []string {
	marked := speakerLabel.ReplaceAllString(text, "\n$1:")
	var lines []string
	for _, l := range strings.Split(marked, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// answerTail is the text of the last provider turn, including unlabelled
// continuation lines. It is empty when no provider turn exists.
func answerTail(lines []string) string {
	last := -1
	for i, l := range lines {
		if hasLabel(l, providerLabel) {
			last = i
		}
	}
	if last < 0 {
		return ""
	}

	tail := []string{strings.TrimSpace(lines[last][len(providerLabel):])}
	for _, l := range lines[last+1:] {
		if hasLabel(l, patientLabel) {
			break
		}
		tail = append(tail, l)
	}
	return strings.Join(tail, " ")
}

func hasLabel(line, label string) bool {
	return len(line) >= len(label) && strings.EqualFold(line[:len(label)], label)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
