package config_test

import (
	"testing"

	"github.com/coredump-labs/memplace/internal/config"
	"github.com/coredump-labs/memplace/internal/workload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() config.Params {
	return config.Params{
		Percentages: workload.Percentages{Small: 50, Medium: 30, Large: 20},
		UnitSize:    8,
		TotalUnits:  1000,
		TestName:    "t1",
		SummaryBase: "summary",
		LogBase:     "log",
	}
}

func TestValidateRejectsBadPercentageSum(t *testing.T) {
	p := validParams()
	p.Percentages.Large = 21
	_, err := config.Validate(p)
	require.Error(t, err)
}

func TestValidateWarnsOnNonMultipleOfEightUnitSize(t *testing.T) {
	p := validParams()
	p.UnitSize = 7
	warnings, err := config.Validate(p)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}

func TestValidateAcceptsGoodParams(t *testing.T) {
	warnings, err := config.Validate(validParams())
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidateRejectsNonPositiveSizes(t *testing.T) {
	p := validParams()
	p.TotalUnits = 0
	_, err := config.Validate(p)
	require.Error(t, err)
}
