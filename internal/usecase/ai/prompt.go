package ai

import (
	"fmt"
	"strings"
)

// NotAddressed marks a framework section the consult never covered
const NotAddressed = "❌ Not addressed."

// FrameworkSections are the checklist points of a consultation, in order
var FrameworkSections = [...]string{
	"Introduction of Provider",
	"Confirmation of Patient by Name and DOB",
	"Confirmation of Patient Location",
	"Confirmation of Current Regimen",
	"Symptoms, Goals for Treatment",
	"Health Updates, Medication Reconciliation, Preventative Screening",
	"Blood Donation Regimen",
	"Lab Review",
	"HRT/Peptide/Other Recommendations",
	"Blood Donation Plans",
	"Lab Follow-up Plan",
	"Refill Needs",
	"CC Confirmation",
	"Shipping Address Confirmation",
	"Review Plan & Patient Q&A",
}

func sectionList() string {
	var b strings.Builder
	for i, s := range FrameworkSections {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, s)
	}
	return b.String()
}

// TextPrompt asks for a readable free-form consultation report
func TextPrompt() string {
	return `You are a medical consultation analyst. Read the transcript and extract relevant information for each section of the 15-point framework. Respond with:

Provider: [Insert or infer]
Score: [Rate 1-10 based on completeness]
Consult Duration: [Insert duration in minutes if known or estimate based on transcript]

Summary by Section:
` + sectionList() + `
If a section is not discussed, write: "` + NotAddressed + `"
Make the output readable like a professional consultation report.`
}

// JSONPrompt asks for the same review as a single JSON object
func JSONPrompt() string {
	return `You are a medical consultation analyst. Read the transcript and review it against the 15-point framework below.

` + sectionList() + `
Respond with one JSON object and nothing else, using exactly these keys:
{
  "provider": "name of the provider, inferred if not stated",
  "patient": "name of the patient, empty if unknown",
  "score": 1-10 rating of completeness as a number,
  "consult_duration": "duration in minutes if known or estimated from the transcript",
  "summary": "short narrative summary of the consult",
  "sections": ["one string per framework point, in order, exactly 15 entries"],
  "anomalies": "anything out of place or unrelated to the consult, empty if none"
}
If a section is not discussed, its entry is "` + NotAddressed + `".`
}
