package time

import (
	"testing"
	"time"

	kit "carcrawl/internal/platform/testkit"
)

func TestDateKeyAndToday(t *testing.T) {
	kit.Serial(t)
	fixed := time.Date(2025, 3, 9, 23, 59, 0, 0, time.Local)
	if got := DateKey(fixed); got != "2025-03-09" {
		t.Fatalf("DateKey = %q", got)
	}
	kit.Swap(t, &Now, func() time.Time { return fixed })
	if got := Today(); got != "2025-03-09" {
		t.Fatalf("Today = %q", got)
	}
}
