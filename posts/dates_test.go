package posts

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  any
		want time.Time
		ok   bool
	}{
		{"2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{" 2024-01-05 ", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"2024-01-05 10:30", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC), true},
		{"2024-01-05T10:30:00Z", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC), true},
		{"05.01.2024", time.Time{}, false},
		{"", time.Time{}, false},
		{nil, time.Time{}, false},
		{42, time.Time{}, false},
		{time.Time{}, time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.raw)
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("ParseDate(%v) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormatDateEnglish(t *testing.T) {
	ts := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(ts, "en-US"); got != "January 5, 2024" {
		t.Errorf("FormatDate(en-US) = %q, want %q", got, "January 5, 2024")
	}
	if got := FormatDate(ts, "xx-invalid-!!"); got != "January 5, 2024" {
		t.Errorf("FormatDate(invalid) = %q, want the en-US fallback", got)
	}
}

func TestFormatDateLayoutOverride(t *testing.T) {
	ts := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if got := FormatDateLayout(ts, "en-US", "2006-01-02"); got != "2024-01-05" {
		t.Errorf("FormatDateLayout = %q, want %q", got, "2024-01-05")
	}
}

func TestCanonicalLocale(t *testing.T) {
	tests := map[string]string{
		"en-us":  "en-US",
		"ru-RU":  "ru-RU",
		" ru ":   "ru",
		"!!bad!": "!!bad!",
	}
	for in, want := range tests {
		if got := CanonicalLocale(in); got != want {
			t.Errorf("CanonicalLocale(%q) = %q, want %q", in, got, want)
		}
	}
	if !SameLocale("EN-us", "en-US") {
		t.Error("SameLocale should ignore case")
	}
	if SameLocale("en-US", "ru-RU") {
		t.Error("SameLocale(en-US, ru-RU) should be false")
	}
}
