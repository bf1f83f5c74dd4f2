package brain

import (
	"regexp"
	"strconv"
	"strings"
)

// The upstream recommendation engine embeds structured hints in its
// free-text rationale. Two independent extractors mine them; a failed parse
// silently falls back to the computed value, never to an error.

var (
	bucketPattern = regexp.MustCompile(`(?i)Risk bucket:\s*([A-Za-z_]+)`)

	// "Expected return ≈ 4.5%", "Expected return ~ 4.5 %", "Expected return = 4.5%"
	expectedPattern = regexp.MustCompile(`(?i)Expected return\s*(?:≈|~|=|:)\s*(-?\d+(?:\.\d+)?)\s*%`)
)

// RiskBucketFromReason extracts a "Risk bucket: X" hint. Anything outside
// the four known buckets, including absence, maps to UNKNOWN so the output
// enum stays closed.
func RiskBucketFromReason(reason string) string {
	m := bucketPattern.FindStringSubmatch(reason)
	if m == nil {
		return BucketUnknown
	}
	return normalizeBucket(m[1])
}

// ExpectedReturnFromReason extracts an "Expected return ≈ N%" hint, or nil.
// When present it overrides the price-derived expected return: the model's
// estimate beats the simple target/entry ratio.
func ExpectedReturnFromReason(reason string) *float64 {
	m := expectedPattern.FindStringSubmatch(reason)
	if m == nil {
		return nil
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return finiteOrNull(f)
}

func normalizeBucket(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case BucketConservative:
		return BucketConservative
	case BucketBalanced:
		return BucketBalanced
	case BucketAggressive:
		return BucketAggressive
	case BucketUltraAggressive:
		return BucketUltraAggressive
	default:
		return BucketUnknown
	}
}
