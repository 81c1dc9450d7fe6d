// Package frequency maps free-text prescription frequency descriptors to
// canonical daily dosing times.
package frequency

import "strings"

// FallbackTime is assigned when a descriptor matches no known pattern,
// including "as needed" medications, so every medication carries at least
// one nominal daily time.
const FallbackTime = "09:00"

type rule struct {
	keywords []string
	times    []string
}

// Rules are evaluated top-down and the first hit wins. The more specific
// patterns sit above the looser ones so that e.g. "four times daily" is
// never captured by the "twice"/"times" checks below it.
var rules = []rule{
	{[]string{"four times", "4 times", "qid"}, []string{"08:00", "12:00", "16:00", "20:00"}},
	{[]string{"three times", "3 times", "tid"}, []string{"08:00", "14:00", "20:00"}},
	{[]string{"twice", "two times", "2 times", "bid"}, []string{"08:00", "20:00"}},
	{[]string{"once daily", "once a day", "daily", "qd"}, []string{"09:00"}},
	{[]string{"bedtime", "at night", "nightly", "hs"}, []string{"22:00"}},
	{[]string{"morning"}, []string{"08:00"}},
	{[]string{"evening"}, []string{"18:00"}},
	{[]string{"every 8 hours", "q8h"}, []string{"06:00", "14:00", "22:00"}},
	{[]string{"every 6 hours", "q6h"}, []string{"06:00", "12:00", "18:00", "00:00"}},
	{[]string{"every 12 hours", "q12h"}, []string{"08:00", "20:00"}},
}

// Parse returns the canonical dosing times for a frequency descriptor.
// Matching is case-insensitive substring matching against a prioritized
// rule table. Parse never fails and never returns an empty set; anything
// unrecognized gets the fallback time.
func Parse(descriptor string) []string {
	desc := strings.ToLower(descriptor)

	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(desc, kw) {
				out := make([]string, len(r.times))
				copy(out, r.times)
				return out
			}
		}
	}

	return []string{FallbackTime}
}
