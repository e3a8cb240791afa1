package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.34", 12.34, true},
		{"12,34", 12.34, true},
		{"12.345", 12.35, true}, // rounds half up
		{"12.344", 12.34, true},
		{"0", 0, true},
		{"1000000", 1000000, true},
		{"", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
		{"12 34", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Errorf("ParseAmount(%q): unexpected error %v", tc.in, err)
			} else if got != tc.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tc.in, got, tc.want)
			}
		} else if err == nil {
			t.Errorf("ParseAmount(%q): expected error, got %v", tc.in, got)
		}
	}
}

func TestRoundAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{12.344, 12.34},
		{12.345, 12.35},
		{12.346, 12.35},
		{100, 100},
	}
	for _, tc := range cases {
		if got := RoundAmount(tc.in); got != tc.want {
			t.Errorf("RoundAmount(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
