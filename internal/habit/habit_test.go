package habit

import (
	"testing"
	"time"
)

func TestParseColorKnownValues(t *testing.T) {
	for _, c := range Colors() {
		if got := ParseColor(string(c)); got != c {
			t.Fatalf("expected %s, got %s", c, got)
		}
	}
}

func TestParseColorFallsBackToGreen(t *testing.T) {
	for _, name := range []string{"", "magenta", "GREEN ", "teal", "蓝色"} {
		got := ParseColor(name)
		switch name {
		case "GREEN ":
			if got != ColorGreen {
				t.Fatalf("expected case-insensitive green, got %s", got)
			}
		default:
			if got != DefaultColor {
				t.Fatalf("expected fallback green for %q, got %s", name, got)
			}
		}
	}
}

func TestClampDisplayDays(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultDisplayDays},
		{-5, DefaultDisplayDays},
		{1, 1},
		{28, 28},
		{90, 90},
		{91, 90},
		{400, 90},
	}

	for _, tc := range cases {
		if got := ClampDisplayDays(tc.in); got != tc.want {
			t.Fatalf("ClampDisplayDays(%d): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestStartOfDayTruncates(t *testing.T) {
	at := time.Date(2025, 3, 10, 22, 45, 31, 12345, time.Local)
	got := StartOfDay(at)

	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
	if got.Year() != 2025 || got.Month() != time.March || got.Day() != 10 {
		t.Fatalf("expected same calendar day, got %v", got)
	}
}

func TestSameDayAcrossLocations(t *testing.T) {
	utc := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	shifted := utc.In(time.FixedZone("plusone", 3600))

	// 同一瞬间在不同时区可能落在不同日历日
	if SameDay(utc, shifted) {
		t.Fatal("expected different calendar days across zones")
	}
	if !SameDay(utc, time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)) {
		t.Fatal("expected same calendar day")
	}
}

func TestDaysLeftInYear(t *testing.T) {
	cases := []struct {
		at   time.Time
		want int
	}{
		{time.Date(2025, 12, 31, 10, 0, 0, 0, time.Local), 1},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local), 365},
		{time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local), 366}, // 闰年
	}

	for _, tc := range cases {
		if got := DaysLeftInYear(tc.at); got != tc.want {
			t.Fatalf("DaysLeftInYear(%v): expected %d, got %d", tc.at, tc.want, got)
		}
	}
}
