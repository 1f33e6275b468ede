package emi

import (
	"math"
	"testing"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		principal  float64
		rate       float64
		termMonths int
		expected   float64
	}{
		{
			name:       "one year at twelve percent",
			principal:  1000000,
			rate:       12.0,
			termMonths: 12,
			expected:   88848.79,
		},
		{
			name:       "thirty year mortgage",
			principal:  1000000,
			rate:       12.0,
			termMonths: 360,
			expected:   10286.13,
		},
		{
			name:       "zero rate splits evenly",
			principal:  1200000,
			rate:       0,
			termMonths: 12,
			expected:   100000,
		},
		{
			name:       "term clamps to one month",
			principal:  5000,
			rate:       0,
			termMonths: 0,
			expected:   5000,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Calculate(test.principal, test.rate, test.termMonths)
			if math.Abs(got-test.expected) > 0.01 {
				t.Errorf("Calculate(%.0f, %.2f, %d) = %.4f, expected %.2f",
					test.principal, test.rate, test.termMonths, got, test.expected)
			}
		})
	}
}

func TestMonthlyInterest(t *testing.T) {
	got := MonthlyInterest(100000, 12.0)
	if math.Abs(got-1000) > 1e-9 {
		t.Errorf("MonthlyInterest(100000, 12) = %.6f, expected 1000", got)
	}
	if got := MonthlyInterest(0, 12.0); got != 0 {
		t.Errorf("MonthlyInterest(0, 12) = %.6f, expected 0", got)
	}
}

func TestRemainingTermMonths(t *testing.T) {
	tests := []struct {
		days     int
		expected int
	}{
		{366, 12},
		{365, 12},
		{31, 1},
		{46, 2},
		{15, 1},
		{0, 1},
		{-10, 1},
	}
	for _, test := range tests {
		if got := RemainingTermMonths(test.days); got != test.expected {
			t.Errorf("RemainingTermMonths(%d) = %d, expected %d", test.days, got, test.expected)
		}
	}
}
