package upstream

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRestyLog_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := restyLog{log: zerolog.New(&buf).With().Str("component", "upstream").Logger()}

	l.Errorf("dial %s failed\n", "tcp")
	l.Warnf("retry %d of %d", 1, 3)
	l.Debugf("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	type entry struct {
		Level     string `json:"level"`
		Message   string `json:"message"`
		Source    string `json:"source"`
		Component string `json:"component"`
	}
	want := []entry{
		{Level: "error", Message: "dial tcp failed", Source: "resty", Component: "upstream"},
		{Level: "warn", Message: "retry 1 of 3", Source: "resty", Component: "upstream"},
		{Level: "debug", Message: "plain", Source: "resty", Component: "upstream"},
	}
	for i, raw := range lines {
		var got entry
		require.NoError(t, json.Unmarshal([]byte(raw), &got), raw)
		require.Equal(t, want[i], got)
	}
}
