package resolve

import "github.com/vlourenco/cardlink/internal/model"

// StepStatus describes what happened to one saga step.
type StepStatus string

const (
	StepSkipped StepStatus = "SKIPPED"
	StepOK      StepStatus = "OK"
	StepFailed  StepStatus = "FAILED"
)

// StepOutcome is the recorded outcome of a single step.
type StepOutcome struct {
	Status StepStatus
	Err    error
}

func skipped() StepOutcome { return StepOutcome{Status: StepSkipped} }

func ok() StepOutcome { return StepOutcome{Status: StepOK} }

func failed(err error) StepOutcome { return StepOutcome{Status: StepFailed, Err: err} }

// Result captures the outcome of each resolution step. Partial success is
// by policy, not an error: a chat can exist with no message sent, and the
// caller sees exactly which steps ran.
type Result struct {
	Chat    *model.Chat
	Created bool

	Profile  StepOutcome
	Lookup   StepOutcome
	Create   StepOutcome
	Navigate StepOutcome
	Send     StepOutcome
}

// Resolved reports whether a chat was found or created.
func (r *Result) Resolved() bool {
	return r.Chat != nil
}
