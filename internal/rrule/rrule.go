package rrule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ParseRRule parses an RFC 5545 RRULE string anchored at dtstart.
func ParseRRule(ruleStr string, dtstart time.Time) (*rrule.RRule, error) {
	// Handle RRULE: prefix if present
	ruleStr = strings.TrimPrefix(ruleStr, "RRULE:")

	opt, err := rrule.StrToROption(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE: %w", err)
	}
	opt.Dtstart = dtstart
	return rrule.NewRRule(*opt)
}

// Occurrences returns the occurrences of the rule within [dtstart, until],
// capped at max entries so a COUNT-less rule cannot expand without bound.
// dtstart itself is included when the rule produces it.
func Occurrences(ruleStr string, dtstart, until time.Time, max int) ([]time.Time, error) {
	rule, err := ParseRRule(ruleStr, dtstart)
	if err != nil {
		return nil, err
	}

	iterator := rule.Iterator()
	var results []time.Time
	for {
		next, ok := iterator()
		if !ok || next.After(until) {
			break
		}
		results = append(results, next)
		if len(results) >= max {
			break
		}
	}
	return results, nil
}
