package logger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorDeduplicates(t *testing.T) {
	c := NewLogCollector(&CollectionConfig{Retention: time.Hour, MaxUnique: 10})
	defer c.Close()

	c.AddLog("error", "settings fetch failed", map[string]interface{}{"env": "SIM"}, "a.go:1")
	c.AddLog("error", "settings fetch failed", map[string]interface{}{"env": "SIM"}, "a.go:1")
	c.AddLog("error", "publish failed", nil, "b.go:2")

	snap := c.Snapshot()
	require.Len(t, snap, 2)

	total := 0
	for _, e := range snap {
		total += e.Count
		if e.Message == "settings fetch failed" {
			assert.Equal(t, 2, e.Count)
			assert.False(t, e.LastSeen.Before(e.FirstSeen))
		}
	}
	assert.Equal(t, 3, total)
}

func TestCollectorEvictsAtCap(t *testing.T) {
	c := NewLogCollector(&CollectionConfig{Retention: time.Hour, MaxUnique: 3})
	defer c.Close()

	for i := 0; i < 5; i++ {
		c.AddLog("error", fmt.Sprintf("err %d", i), nil, "c.go:3")
	}
	assert.Len(t, c.Snapshot(), 3)
}

func TestCollectorSnapshotNewestFirst(t *testing.T) {
	c := NewLogCollector(nil)
	defer c.Close()

	c.AddLog("error", "first", nil, "")
	time.Sleep(2 * time.Millisecond)
	c.AddLog("error", "second", nil, "")

	snap := c.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "second", snap[0].Message)
}

func TestLoggerMirrorsErrorsToCollector(t *testing.T) {
	l, err := New(&Config{Level: "info", Format: "console", Output: "stdout"})
	require.NoError(t, err)

	l.AddCollector(&CollectionConfig{Retention: time.Hour, MaxUnique: 10})
	defer l.RemoveCollector()

	l.Info("not mirrored")
	l.Error("boom", String("env", "SIM"))

	snap := l.RecentErrors()
	require.Len(t, snap, 1)
	assert.Equal(t, "boom", snap[0].Message)
	assert.Equal(t, "SIM", snap[0].Fields["env"])
}
