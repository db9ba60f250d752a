// Package time contains time related helpers
package time

import "time"

// Now is the process clock; tests swap it with testkit.Swap
var Now = time.Now

// DateKey formats t as a local calendar day, e.g. 2025-03-09
func DateKey(t time.Time) string { return t.Format(time.DateOnly) }

// Today is DateKey(Now())
func Today() string { return DateKey(Now()) }
