package utils

import (
	"testing"
	"time"
)

func TestJoinNames(t *testing.T) {
	cases := []struct {
		names []string
		want  string
	}{
		{nil, ""},
		{[]string{"Maya Chen"}, "Maya Chen"},
		{[]string{"Maya Chen", "Otto Weiss"}, "Maya Chen and Otto Weiss"},
		{[]string{"Maya Chen", "Otto Weiss", "Ines Duarte"}, "Maya Chen, Otto Weiss and Ines Duarte"},
		{[]string{" ", "Maya Chen", ""}, "Maya Chen"},
	}

	for _, tc := range cases {
		if got := JoinNames(tc.names); got != tc.want {
			t.Errorf("JoinNames(%v) = %q, want %q", tc.names, got, tc.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, time.September, 3, 15, 4, 5, 0, time.UTC)
	if got := FormatDate(d); got != "Sep 3, 2026" {
		t.Fatalf("FormatDate = %q", got)
	}
}
