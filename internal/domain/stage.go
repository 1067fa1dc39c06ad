package domain

import (
	"fmt"
	"strings"
)

// Stage represents the position of an application in the hiring pipeline.
type Stage string

const (
	StageApplied   Stage = "Applied"
	StageScreening Stage = "Screening"
	StageInterview Stage = "Interview"
	StageOffer     Stage = "Offer"
	StageHired     Stage = "Hired"
	StageRejected  Stage = "Rejected"
)

func (s Stage) String() string { return string(s) }

func (s Stage) IsValid() bool {
	_, ok := stageTransitions[s]
	return ok
}

// IsTerminal reports whether the stage has no outgoing transitions.
func (s Stage) IsTerminal() bool {
	successors, ok := stageTransitions[s]
	return ok && len(successors) == 0
}

func ParseStageFromString(s string) (Stage, error) {
	trimmed := strings.TrimSpace(s)
	for candidate := range stageTransitions {
		if strings.EqualFold(trimmed, candidate.String()) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: invalid stage %q", ErrValidation, s)
}

// stageTransitions is the pipeline state machine: every stage maps to its set
// of legal successors. Self-transitions and skips are illegal by omission.
var stageTransitions = map[Stage][]Stage{
	StageApplied:   {StageScreening, StageRejected},
	StageScreening: {StageInterview, StageRejected},
	StageInterview: {StageOffer, StageRejected},
	StageOffer:     {StageHired, StageRejected},
	StageHired:     {},
	StageRejected:  {},
}

// Successors returns a copy of the legal next stages.
func (s Stage) Successors() []Stage {
	successors := stageTransitions[s]
	out := make([]Stage, len(successors))
	copy(out, successors)
	return out
}

// CanTransitionTo reports whether the pipeline allows moving to the given stage.
func (s Stage) CanTransitionTo(to Stage) bool {
	for _, successor := range stageTransitions[s] {
		if successor == to {
			return true
		}
	}
	return false
}

// Stages returns every stage in the pipeline, in pipeline order.
func Stages() []Stage {
	return []Stage{StageApplied, StageScreening, StageInterview, StageOffer, StageHired, StageRejected}
}

// ValidateStagePath checks that an ordered sequence of history records,
// replayed from the initial stage, follows the transition table.
func ValidateStagePath(history []ApplicationHistory) error {
	current := StageApplied
	for i := range history {
		record := &history[i]
		if record.PreviousStage != current {
			return fmt.Errorf("%w: history record %d starts at %s, expected %s",
				ErrValidation, i, record.PreviousStage, current)
		}
		if !record.PreviousStage.CanTransitionTo(record.NewStage) {
			return &InvalidTransitionError{From: record.PreviousStage, To: record.NewStage}
		}
		current = record.NewStage
	}
	return nil
}
