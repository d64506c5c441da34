package units_test

import (
	"testing"

	"github.com/coredump-labs/memplace/internal/units"
	"github.com/stretchr/testify/assert"
)

func TestFromBytes(t *testing.T) {
	cases := []struct {
		name string
		b    int
		u    int
		want int
	}{
		{"zero", 0, 8, 0},
		{"negative", -5, 8, 0},
		{"exact", 16, 8, 2},
		{"roundUp", 17, 8, 3},
		{"oneByteOneUnit", 1, 8, 1},
		{"unitLargerThanBytes", 3, 8, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, units.FromBytes(c.b, c.u))
		})
	}
}
