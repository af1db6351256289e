package plan

import (
	"errors"
	"fmt"
)

// Pass names one of the three optimizer passes.
type Pass string

const (
	PassDaily      Pass = "daily"
	PassBioMonthly Pass = "biomonthly"
	PassYearly     Pass = "yearly"
)

// Passes lists the passes in execution order.
var Passes = [...]Pass{PassDaily, PassBioMonthly, PassYearly}

var (
	// ErrNoCandidate means no eligible (cell, side) remained in scope.
	ErrNoCandidate = errors.New("no eligible candidate")
	// ErrIterationCeiling means a pass exceeded its iteration ceiling.
	ErrIterationCeiling = errors.New("iteration ceiling exceeded")
	// ErrNotEligible is returned by Advance and Retreat when the facility
	// cannot move.
	ErrNotEligible = errors.New("facility not eligible")
)

// UnreachableConstraintError reports a pass that could not satisfy its
// constraint. Unit is the row index for the daily pass, the bi-month for the
// bi-monthly pass and the year for the yearly pass.
type UnreachableConstraintError struct {
	Pass  Pass
	Unit  int
	Have  int
	Need  int
	Cause error
}

func (e *UnreachableConstraintError) Error() string {
	return fmt.Sprintf("%s pass: unit %d stuck at %d, needs %d: %v", e.Pass, e.Unit, e.Have, e.Need, e.Cause)
}

func (e *UnreachableConstraintError) Unwrap() error { return e.Cause }

// InputValidationError rejects a request before any grid is built.
type InputValidationError struct {
	Field  string
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
