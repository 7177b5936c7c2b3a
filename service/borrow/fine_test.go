package borrowsvc

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		name     string
		from, to time.Time
		want     int64
	}{
		{"same day", day(2024, 3, 10), day(2024, 3, 10), 0},
		{"one day", day(2024, 3, 10), day(2024, 3, 11), 1},
		{"across month", day(2024, 2, 28), day(2024, 3, 1), 2},
		{"clock time ignored", time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC), time.Date(2024, 3, 11, 0, 1, 0, 0, time.UTC), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysBetween(tc.from, tc.to); got != tc.want {
				t.Fatalf("DaysBetween(%v, %v) = %d; want %d", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestFine(t *testing.T) {
	expected := day(2024, 3, 15)
	today := day(2024, 3, 25) // 10 days late

	got := Fine(expected, today, decimal.RequireFromString("1"))
	if !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("fine = %s; want 10", got)
	}

	got = Fine(expected, today, decimal.RequireFromString("2.5"))
	if !got.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("fine = %s; want 25", got)
	}
}
