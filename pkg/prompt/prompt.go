// Package prompt is the terminal surface of the bridge: colored status
// output and the interactive disambiguation prompts. The UI interface
// keeps the input source injectable so the orchestrators can be tested
// with a scripted fake instead of a real terminal.
package prompt

import (
	"errors"

	"github.com/jdevries/workbridge/pkg/match"
)

// ErrInterrupted is returned when the operator breaks out of a prompt
// (ctrl+c). The caller decides whether that skips the current item or
// aborts the run.
var ErrInterrupted = errors.New("prompt interrupted")

// Answer is the outcome of a disambiguation prompt: exactly one of
// Candidate (a picked label), Query (a refined search) or Skip is set.
type Answer struct {
	Candidate string
	Query     string
	Skip      bool
}

// UI is everything the orchestrators need from a terminal.
type UI interface {
	Splash()
	Divider()
	ShowUnit(description, date string, hours float64)
	OK(msg string)
	Cross(msg string)
	Warn(msg string)

	// ConfirmMatch asks whether the proposed candidate is the right one
	// for the query.
	ConfirmMatch(query, candidate string) (bool, error)
	// Disambiguate presents scored candidates and lets the operator pick
	// one, refine the query, or skip.
	Disambiguate(query string, results []match.Result) (Answer, error)
	// AskQuery asks for a fresh free-text query.
	AskQuery() (string, error)
	// Confirm asks a yes/no question.
	Confirm(message string) (bool, error)
	// Days asks how many days to go back, falling back to defaultDays on
	// empty or non-numeric input.
	Days(defaultDays int) (int, error)
}
