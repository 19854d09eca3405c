package schedule

import (
	"errors"
	"testing"
	"time"

	"nach-yomi-bot/internal/domain"
)

func TestLoadLocationNormalizes(t *testing.T) {
	for _, raw := range []string{"Asia/Jerusalem", "asia/jerusalem", "  Asia/Jerusalem "} {
		loc, err := LoadLocation(raw)
		if err != nil {
			t.Fatalf("LoadLocation(%q): %v", raw, err)
		}
		if loc.String() != "Asia/Jerusalem" {
			t.Fatalf("LoadLocation(%q) = %s", raw, loc)
		}
	}
	if _, err := LoadLocation("Mars/Olympus"); !errors.Is(err, ErrInvalidTimezone) {
		t.Fatalf("expected ErrInvalidTimezone, got %v", err)
	}
}

func TestWindowContains(t *testing.T) {
	loc, err := LoadLocation(DefaultTimezone)
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	w := Window{StartHour: 0, EndHour: 6}
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "winter 05:30 IST", now: time.Date(2026, 3, 1, 3, 30, 0, 0, time.UTC), want: true},
		{name: "summer 06:30 IDT inclusive end", now: time.Date(2026, 6, 1, 3, 30, 0, 0, time.UTC), want: true},
		{name: "summer 07:30 IDT", now: time.Date(2026, 6, 1, 4, 30, 0, 0, time.UTC), want: false},
		{name: "evening", now: time.Date(2026, 6, 1, 17, 0, 0, 0, time.UTC), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.now, loc); got != tt.want {
				t.Fatalf("Contains(%s) = %v, want %v", tt.now.In(loc), got, tt.want)
			}
		})
	}

	overnight := Window{StartHour: 22, EndHour: 2}
	if !overnight.Contains(time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC), time.UTC) {
		t.Fatalf("overnight window should contain 23:00")
	}
	if overnight.Contains(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), time.UTC) {
		t.Fatalf("overnight window should not contain 12:00")
	}
}

func TestDateOfUsesLocalCalendarDay(t *testing.T) {
	loc, err := LoadLocation(DefaultTimezone)
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	got := domain.DateOf(time.Date(2026, 3, 1, 22, 30, 0, 0, time.UTC), loc)
	want := domain.Date{Year: 2026, Month: 3, Day: 2}
	if got != want {
		t.Fatalf("DateOf = %s, want %s", got, want)
	}
	if got.Days()-want.AddDays(-1).Days() != 1 {
		t.Fatalf("calendar difference should be one day")
	}
}
