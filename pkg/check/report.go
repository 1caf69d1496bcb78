package check

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrConstraintViolation is matched by every error describing violated constraints
	ErrConstraintViolation = errors.New("solution violates scheduling constraints")
	// ErrNumericTolerance is matched when every violation is a floating-point near miss
	ErrNumericTolerance = errors.New("solution is outside numeric tolerance")
)

type Family string

const (
	Assignment Family = "assignment"
	Completion Family = "completion"
	Lag        Family = "lag"
	Sequencing Family = "sequencing"
	Holding    Family = "holding"
	Capacity   Family = "capacity"
	Makespan   Family = "makespan"
	Horizon    Family = "horizon"
)

// Families lists every constraint family in reporting order
var Families = []Family{Assignment, Completion, Lag, Sequencing, Holding, Capacity, Makespan, Horizon}

type Violation struct {
	Family     Family
	Operations []int
	Machine    int     // -1 when the constraint is not tied to a machine
	Margin     float64 // Amount by which the constraint fails
	Numeric    bool    // The margin is within the rounding band (solver round-off rather than a structural defect)
	Detail     string
}

func (violation Violation) String() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%v: operations %v", violation.Family, violation.Operations)
	if violation.Machine >= 0 {
		fmt.Fprintf(&builder, " on machine %d", violation.Machine)
	}
	fmt.Fprintf(&builder, ": %v (margin %.6g", violation.Detail, violation.Margin)
	if violation.Numeric {
		builder.WriteString(", numeric")
	}
	builder.WriteString(")")
	return builder.String()
}

type Report struct {
	Formulation string
	Violations  []Violation
}

func (report *Report) Passed() bool {
	return len(report.Violations) == 0
}

// Families returns the violated families in reporting order
func (report *Report) Families() []Family {
	violated := lo.Uniq(lo.Map(report.Violations, func(violation Violation, _ int) Family { return violation.Family }))
	slices.SortFunc(violated, func(a, b Family) int {
		return slices.Index(Families, a) - slices.Index(Families, b)
	})
	return violated
}

func (report *Report) ByFamily(family Family) []Violation {
	return lo.Filter(report.Violations, func(violation Violation, _ int) bool { return violation.Family == family })
}

// Err returns nil when the solution passed, otherwise a *ViolationError
func (report *Report) Err() error {
	if report.Passed() {
		return nil
	}
	return &ViolationError{Report: report}
}

func (report *Report) String() string {
	if report.Passed() {
		return fmt.Sprintf("%v: all constraints are met", report.Formulation)
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "%v: %d violation(s) in %v\n", report.Formulation, len(report.Violations), report.Families())
	for _, violation := range report.Violations {
		fmt.Fprintf(&builder, "\t%v\n", violation)
	}
	return builder.String()
}

type ViolationError struct {
	Report *Report
}

func (err *ViolationError) Error() string {
	return err.Report.String()
}

func (err *ViolationError) Is(target error) bool {
	switch target {
	case ErrConstraintViolation:
		return true
	case ErrNumericTolerance:
		return lo.EveryBy(err.Report.Violations, func(violation Violation) bool { return violation.Numeric })
	}
	return false
}
