package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTestLogger_RecordsEntries(t *testing.T) {
	log := NewTest(t)

	log.Info("state transition", "from", "loading", "to", "not-subscribed")
	log.Warn("toggle not allowed in current state", "state", "updating")
	log.Warn("toggle not allowed in current state", "state", "error")

	require.True(t, log.Has("INFO", "state transition"))
	require.False(t, log.Has("ERROR", "state transition"))
	require.Equal(t, 2, log.Count("WARN", "toggle not allowed in current state"))

	entries := log.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, "not-subscribed", entries[0].Value("to"))
	require.Nil(t, entries[0].Value("missing"))
}

func TestFormatKeyValues(t *testing.T) {
	require.Empty(t, formatKeyValues(nil))
	require.Equal(t, "a=1 b=<missing> ", formatKeyValues([]any{"a", 1, "b"}))
}
