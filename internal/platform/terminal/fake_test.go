package terminal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFake_SnapshotAnswersEverySymbol(t *testing.T) {
	t.Parallel()

	fake := NewFake()
	symbols := []string{"LMCADS03", "XAU=", "MADEUP"}

	quotes, err := fake.Snapshot(context.Background(), symbols)
	require.NoError(t, err)
	require.Len(t, quotes, len(symbols))

	for i, q := range quotes {
		assert.Equal(t, symbols[i], q.Symbol)
		require.NotNil(t, q.LastPrice)
		assert.GreaterOrEqual(t, *q.LastPrice, 1000.0)
		assert.Less(t, *q.LastPrice, 11000.0)
	}

	// Same symbol, same price, every time.
	again, err := fake.Snapshot(context.Background(), symbols[:1])
	require.NoError(t, err)
	assert.Equal(t, *quotes[0].LastPrice, *again[0].LastPrice)
}

func TestFake_HistoricalRangeSkipsWeekends(t *testing.T) {
	t.Parallel()

	fake := NewFake()
	// Monday through the Sunday two weeks on.
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)

	points, err := fake.HistoricalRange(context.Background(), "LMCADS03", start, end)
	require.NoError(t, err)
	assert.Len(t, points, 10, "two full trading weeks")

	for i, p := range points {
		assert.NotEqual(t, time.Saturday, p.Date.Weekday())
		assert.NotEqual(t, time.Sunday, p.Date.Weekday())
		if i > 0 {
			assert.True(t, points[i-1].Date.Before(p.Date), "points ascend by date")
		}
	}
}

func TestFake_StatusAlwaysConnected(t *testing.T) {
	t.Parallel()

	status := NewFake().Status()
	assert.True(t, status.Available)
	assert.True(t, status.Connected)
}
