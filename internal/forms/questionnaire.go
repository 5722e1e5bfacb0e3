// Package forms implements the step-wise conversational forms of the bot:
// the seven-section case questionnaire, the partner profile and the revenue
// entry. Forms are plain values with no I/O so they can be stored in any
// session backend and tested in isolation.
package forms

import (
	"fmt"
	"strings"
	"time"
)

// State is the position of a questionnaire in its flow.
type State string

// Questionnaire states. Steps are 1-indexed to match the prompts.
const (
	StateStep1             State = "step_1"
	StateStep2             State = "step_2"
	StateStep3             State = "step_3"
	StateStep4             State = "step_4"
	StateStep5             State = "step_5"
	StateStep6             State = "step_6"
	StateStep7             State = "step_7"
	StateAwaitingDocuments State = "awaiting_documents"
	StateViewingSummary    State = "viewing_summary"
)

// NumSections is the number of free-text sections of a questionnaire.
const NumSections = 7

// Section describes one question of the questionnaire.
type Section struct {
	Key   string
	Title string
	Hint  string
}

// Sections lists the questionnaire sections in their fixed order.
var Sections = [NumSections]Section{
	{Key: "parties", Title: "Parties to the dispute", Hint: "Who is the claimant, who is the defendant, are there third parties, and which of them is our client?"},
	{Key: "dispute", Title: "Subject of the dispute", Hint: "What is being claimed: money, a right, termination of a contract? What amount is at stake?"},
	{Key: "legal_basis", Title: "Legal basis", Hint: "Which laws, contracts and facts do the parties rely on?"},
	{Key: "chronology", Title: "Chronology", Hint: "What happened, when, and who did it? Briefly, by date."},
	{Key: "evidence", Title: "Evidence", Hint: "Which documents, correspondence and witnesses are available?"},
	{Key: "procedural", Title: "Procedural history", Hint: "Have there been lawsuits, complaints or decisions already?"},
	{Key: "goal", Title: "Client's goal", Hint: "What outcome does the client want to achieve?"},
}

var stepStates = [NumSections]State{
	StateStep1, StateStep2, StateStep3, StateStep4, StateStep5, StateStep6, StateStep7,
}

// SectionIndex returns the 0-based index of the section with key, or -1.
func SectionIndex(key string) int {
	for i, s := range Sections {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// Attachment is a document accepted during the document phase. Path is
// where the file was stored.
type Attachment struct {
	Path         string    `json:"path"`
	FileType     string    `json:"file_type"`
	OriginalName string    `json:"original_name"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Questionnaire is an in-progress case intake form.
//
// Answers are indexed by section. Editing is set while a step was entered
// from the summary, in which case answering returns to the summary instead
// of advancing.
type Questionnaire struct {
	State       State               `json:"state"`
	Answers     [NumSections]string `json:"answers"`
	Attachments []Attachment        `json:"attachments"`
	Editing     bool                `json:"editing"`
}

// NewQuestionnaire returns an empty form positioned at the first step.
func NewQuestionnaire() *Questionnaire {
	return &Questionnaire{State: StateStep1}
}

// Step returns the current 1-based step, or 0 outside the question phase.
func (q *Questionnaire) Step() int {
	for i, s := range stepStates {
		if q.State == s {
			return i + 1
		}
	}
	return 0
}

// Prompt renders the question for the current step as
// "Step X of 7: <title>". It is empty outside the question phase.
func (q *Questionnaire) Prompt() string {
	n := q.Step()
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("Step %d of %d: %s", n, NumSections, Sections[n-1].Title)
}

// Answer stores text for the current step and moves the form on.
func (q *Questionnaire) Answer(text string) error {
	n := q.Step()
	if n == 0 {
		return ErrWrongState
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyAnswer
	}
	q.Answers[n-1] = text

	switch {
	case q.Editing:
		q.Editing = false
		q.State = StateViewingSummary
	case n == NumSections:
		q.State = StateAwaitingDocuments
	default:
		q.State = stepStates[n]
	}
	return nil
}

// Attach records an accepted document. Validation against the attachment
// policy is the caller's job and happens before the file is transferred.
func (q *Questionnaire) Attach(a Attachment) error {
	if q.State != StateAwaitingDocuments {
		return ErrWrongState
	}
	q.Attachments = append(q.Attachments, a)
	return nil
}

// Finish ends the document phase ("done" or "skip") and shows the summary.
func (q *Questionnaire) Finish() error {
	if q.State != StateAwaitingDocuments {
		return ErrWrongState
	}
	q.State = StateViewingSummary
	return nil
}

// Edit jumps from the summary to the step of the section with key. Other
// answers and the attachment list are preserved.
func (q *Questionnaire) Edit(key string) error {
	if q.State != StateViewingSummary {
		return ErrWrongState
	}
	i := SectionIndex(key)
	if i < 0 {
		return ErrUnknownSection
	}
	q.State = stepStates[i]
	q.Editing = true
	return nil
}

// ReadyToSubmit reports whether the form may be submitted.
func (q *Questionnaire) ReadyToSubmit() bool {
	return q.State == StateViewingSummary
}
