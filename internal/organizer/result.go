package organizer

import (
	"errors"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
)

// State is a step of the per-file pipeline.
type State int

const (
	StateParsed State = iota
	StateResolving
	StateResolved
	StateUnresolved
	StateRenamed
	StateAlreadyNamed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StateUnresolved:
		return "unresolved"
	case StateRenamed:
		return "renamed"
	case StateAlreadyNamed:
		return "already_named"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a file's pipeline.
func (s State) Terminal() bool {
	return s == StateRenamed || s == StateAlreadyNamed || s == StateFailed
}

// AlreadyNamedMessage is the message of every AlreadyNamed result.
const AlreadyNamedMessage = "already correctly named"

// ErrTargetExists is returned when the target path is taken by another file.
var ErrTargetExists = errors.New("target already exists")

// RenameResult is the outcome of organizing one file. Outcome is always terminal.
type RenameResult struct {
	Original string
	NewPath  string
	Success  bool
	Outcome  State
	Error    error
	Message  string
	DryRun   bool

	Kind        naming.MediaKind
	Title       string
	Year        int
	Season      int
	Episode     int
	ProviderTag string
	Resolved    bool
	Confidence  float64

	SidecarPath string
}

// ErrorString returns the error text or "".
func (r RenameResult) ErrorString() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Error()
}

// Summary counts batch outcomes.
type Summary struct {
	Total        int
	Renamed      int
	AlreadyNamed int
	Failed       int
	Resolved     int
}

// Summarize counts results per outcome.
func Summarize(results []RenameResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Outcome {
		case StateRenamed:
			s.Renamed++
		case StateAlreadyNamed:
			s.AlreadyNamed++
		case StateFailed:
			s.Failed++
		}
		if r.Resolved {
			s.Resolved++
		}
	}
	return s
}
