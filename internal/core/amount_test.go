package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.34", "12.34"},
		{"12,34", "12.34"},
		{"$45", "45"},
		{"  9.9  ", "9.9"},
		{"12.345", "12.35"}, // rounds half-up on the third decimal
		{"12.344", "12.34"},
		{"0.01", "0.01"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if err != nil {
			t.Errorf("ParseAmount(%q): unexpected error %v", tt.in, err)
			continue
		}
		want, _ := decimal.NewFromString(tt.want)
		if !got.Equal(want) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, want)
		}
	}
}

func TestParseAmountRejects(t *testing.T) {
	for _, in := range []string{"", "  ", "-5", "+5", "0", "0.00", "1.2.3", "abc", "12..3"} {
		if _, err := ParseAmount(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseAmount(%q): expected ErrInvalidAmount, got %v", in, err)
		}
	}
}
