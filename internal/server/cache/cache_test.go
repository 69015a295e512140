package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/scoremerge/internal/ingest"
)

func TestMonthRoundTrip(t *testing.T) {
	c := New(time.Minute, time.Minute)

	_, ok := c.Month("2024-01")
	assert.False(t, ok)

	c.SetMonth("2024-01", &ingest.MonthResult{Month: "2024-01", Files: 2})
	got, ok := c.Month("2024-01")
	require.True(t, ok)
	assert.Equal(t, 2, got.Files)

	c.SetMonths([]ingest.Month{{Name: "2024-01"}})
	months, ok := c.Months()
	require.True(t, ok)
	assert.Len(t, months, 1)
	assert.Equal(t, 2, c.ItemCount())

	c.Clear()
	assert.Equal(t, 0, c.ItemCount())
}

func TestExpiry(t *testing.T) {
	c := New(20*time.Millisecond, time.Minute)
	c.SetMonth("2024-01", &ingest.MonthResult{})
	time.Sleep(40 * time.Millisecond)
	_, ok := c.Month("2024-01")
	assert.False(t, ok)
}
