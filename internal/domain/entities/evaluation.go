package entities

// EvaluationResult is the outcome of the heuristic checks over a transcript.
// It is derived purely from the text and never changed afterwards.
type EvaluationResult struct {
	Proceed             bool     `json:"proceed"`
	DurationFlag        bool     `json:"duration_flag"`
	BehaviorFlag        bool     `json:"behavior_flag"`
	Issues              []string `json:"issues"`
	UnansweredQuestions []string `json:"unanswered_questions"`
	SummaryText         string   `json:"summary_text"`
	WordCount           int      `json:"word_count"`
	EstimatedMinutes    float64  `json:"estimated_minutes"`
}

// Decision returns the human readable proceed/no-proceed verdict
func (e EvaluationResult) Decision() string {
	if e.Proceed {
		return "PROCEED"
	}
	return "DO NOT PROCEED"
}
