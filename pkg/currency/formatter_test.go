package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPoints(t *testing.T) {
	cases := []struct {
		points int
		want   string
	}{
		{0, "0"},
		{950, "950"},
		{12500, "12,500"},
		{57500, "57,500"},
		{1250000, "1,250,000"},
		{-12500, "-12,500"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatPoints(tc.points))
	}
}

func TestFormatCash(t *testing.T) {
	cases := []struct {
		amount float64
		code   string
		want   string
	}{
		{5.6, "USD", "USD 5.60"},
		{0, "USD", "USD 0.00"},
		{112.1, "GBP", "GBP 112.10"},
		{1345.005, "EUR", "EUR 1,345.01"},
		{-42.5, "USD", "-USD 42.50"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCash(tc.amount, tc.code))
	}
}
