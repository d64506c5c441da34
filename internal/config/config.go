// Package config validates and normalizes the simulation parameters shared
// by the interactive and batch-file input paths in cmd/memplace.
package config

import (
	"fmt"

	"github.com/coredump-labs/memplace/internal/workload"
)

// Params is the full set of user-supplied simulation parameters.
type Params struct {
	Percentages workload.Percentages
	UnitSize    int
	TotalUnits  int
	TestName    string
	SummaryBase string
	LogBase     string
	LostMode    bool
	Seed        int64
}

// Warning is a non-fatal issue worth surfacing to the user but that does
// not abort the run (the unit-size-not-a-multiple-of-8 case).
type Warning string

// Validate returns an error if the percentages do not sum to 100 or if the
// unit size or total units is not positive, and otherwise returns any
// non-fatal warnings (currently: unit_size not a multiple of 8).
func Validate(p Params) (warnings []Warning, err error) {
	sum := p.Percentages.Small + p.Percentages.Medium + p.Percentages.Large
	if sum != 100 {
		return nil, fmt.Errorf("config: percentages must add to 100, got %d", sum)
	}
	if p.UnitSize <= 0 {
		return nil, fmt.Errorf("config: unit size must be positive, got %d", p.UnitSize)
	}
	if p.TotalUnits <= 0 {
		return nil, fmt.Errorf("config: total units must be positive, got %d", p.TotalUnits)
	}
	if p.UnitSize%8 != 0 {
		warnings = append(warnings, Warning(fmt.Sprintf(
			"unit size %d is not a multiple of 8", p.UnitSize)))
	}
	return warnings, nil
}
