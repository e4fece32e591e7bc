package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDivRoundHalfEven(t *testing.T) {
	tests := []struct {
		num, den string
		want     string
	}{
		{"1", "3", "0.33"},
		{"2", "3", "0.67"},
		{"5", "1000", "0"},
		{"15", "1000", "0.02"},
		{"25", "1000", "0.02"},
		{"-15", "1000", "-0.02"},
		{"-5", "1000", "0"},
		{"45000", "20", "2250"},
		{"10", "-4", "-2.5"},
	}
	for _, tt := range tests {
		got := divRoundHalfEven(decimal.RequireFromString(tt.num), decimal.RequireFromString(tt.den), MoneyScale)
		assert.Truef(t, decimal.RequireFromString(tt.want).Equal(got), "%s/%s: esperado %s, obtenido %s", tt.num, tt.den, tt.want, got)
	}
}
