package util

import (
    "strconv"
    "time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        return t, true
    }
    if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
        return t, true
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return time.Unix(ts, 0), true
    }
    return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
    if t, ok := ParseTime(s); ok {
        return t
    }
    return def
}

// RunDateLayout is the canonical run date format.
const RunDateLayout = "2006-01-02"

// IsRunDate reports whether s is a valid YYYY-MM-DD run date.
func IsRunDate(s string) bool {
    _, err := time.Parse(RunDateLayout, s)
    return err == nil
}

// NormalizeRunDate parses common date shapes (YYYY-MM-DD, RFC3339, unix
// seconds) and renders them as a canonical run date. Returns ("", false)
// when nothing parses.
func NormalizeRunDate(s string) (string, bool) {
    if s == "" {
        return "", false
    }
    if IsRunDate(s) {
        return s, true
    }
    if t, ok := ParseTime(s); ok {
        return t.UTC().Format(RunDateLayout), true
    }
    return "", false
}