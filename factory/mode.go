package factory

import (
	"fmt"

	"github.com/warp/workload-engine/historic"
	"github.com/warp/workload-engine/percent"
	"github.com/warp/workload-engine/workload"
)

// NewMode selects the Mode declared by the school year. An unknown mode id
// is a configuration error.
func NewMode(sy *workload.SchoolYear) (workload.Mode, error) {
	switch sy.CalculationMode {
	case workload.ModePercent:
		return percent.New(), nil
	case workload.ModePercentAgeReliefIncluded:
		return percent.NewAgeReliefIncluded(), nil
	case workload.ModeLessonsAgeReliefIncluded:
		return percent.NewLessonsAgeReliefIncluded(), nil
	case workload.ModeHistoric:
		if sy.DefaultPayrollType == nil {
			return nil, fmt.Errorf("%w: school year %q", workload.ErrMissingDefaultPayrollType, sy.ID)
		}
		return historic.New(sy.DefaultPayrollType), nil
	default:
		return nil, &workload.ModeError{ModeID: sy.CalculationMode, SchoolYearID: sy.ID}
	}
}

// NewCalculation creates a calculation for e in its school year's mode.
func NewCalculation(e *workload.Employment, opts ...workload.Option) (*workload.Calculation, error) {
	mode, err := NewMode(e.SchoolYear)
	if err != nil {
		return nil, err
	}
	return workload.NewCalculation(e, mode, opts...), nil
}

// Calculate runs the single pass over in, finalizes the payroll and returns
// the Workload.
func Calculate(in *workload.EmploymentInput, opts ...workload.Option) (*workload.Workload, error) {
	calc, err := NewCalculation(in.Employment, opts...)
	if err != nil {
		return nil, err
	}
	if err := calc.AddAll(in); err != nil {
		return nil, err
	}
	if _, err := calc.CalculatePayroll(); err != nil {
		return nil, err
	}
	return calc.Workload()
}
