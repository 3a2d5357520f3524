package coerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"1.500,00", 1500.00},
		{"R$ 2.350,75", 2350.75},
		{"1,500.00", 1500.00},
		{"$1,234,567.89", 1234567.89},
		{"1500", 1500},
		{"150,50", 150.50},
		{"0,99", 0.99},
		{"", 0},
		{"a combinar", 0},
		{"R$", 0},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, Money(c.raw), 0.001, "raw=%q", c.raw)
	}
}
