package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2024-10-10T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestParseTimeDefault(t *testing.T) {
    def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
    got := ParseTimeDefault("", def)
    if !got.Equal(def) {
        t.Fatalf("expected default")
    }
}
func TestIsRunDate(t *testing.T) {
    if !IsRunDate("2024-10-10") {
        t.Fatalf("expected valid run date")
    }
    if IsRunDate("10/10/2024") {
        t.Fatalf("expected invalid run date")
    }
}

func TestNormalizeRunDate(t *testing.T) {
    if got, ok := NormalizeRunDate("2024-10-10"); !ok || got != "2024-10-10" {
        t.Fatalf("unexpected %q %v", got, ok)
    }
    if got, ok := NormalizeRunDate("2024-10-10T10:10:10Z"); !ok || got != "2024-10-10" {
        t.Fatalf("unexpected %q %v", got, ok)
    }
    if _, ok := NormalizeRunDate("nope"); ok {
        t.Fatalf("expected not ok")
    }
}
