package market

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGenerator_Listings(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		listings := NewSeeded(seed, nil).Listings()
		require.Len(t, listings, 4)

		names := []string{listings[0].Name, listings[1].Name, listings[2].Name, listings[3].Name}
		assert.Equal(t, []string{"StockX", "GOAT", "eBay", "Flight Club"}, names)

		for _, l := range listings {
			assert.Equal(t, "10.5 US", l.Size)
			assert.NotEmpty(t, l.Logo)
			assert.NotEmpty(t, l.Condition)
			assert.GreaterOrEqual(t, l.Price, 150)
			assert.LessOrEqual(t, l.Price, 560)
		}
		assert.Equal(t, "Used (9/10)", listings[2].Condition)

		// every price derives from one base, so the pairwise spreads are bounded by the offsets
		stockx, goat, ebay, flight := listings[0].Price, listings[1].Price, listings[2].Price, listings[3].Price
		assert.LessOrEqual(t, ebay, stockx-20)
		assert.GreaterOrEqual(t, ebay, stockx-100)
		assert.InDelta(t, stockx, goat, 55)
		assert.InDelta(t, stockx, flight, 60)
	}
}

func TestGenerator_History(t *testing.T) {
	today := time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)

	for seed := uint64(0); seed < 50; seed++ {
		history := NewSeeded(seed, fixedClock(today)).History()

		require.Len(t, history.Labels, 91)
		require.Len(t, history.Data, len(history.Labels))
		assert.Equal(t, "2023-12-11", history.Labels[0])
		assert.Equal(t, "2024-03-10", history.Labels[90])

		for i := 1; i < len(history.Labels); i++ {
			assert.Less(t, history.Labels[i-1], history.Labels[i], "labels must be strictly ascending")
		}
		for i, v := range history.Data {
			assert.Equal(t, v, math.Round(v*100)/100, "value %d not rounded to cents", i)
			assert.GreaterOrEqual(t, v, 240.0)
			assert.LessOrEqual(t, v, 455.0)
		}
	}
}

func TestGenerator_HistoryUsesLocalCalendarDays(t *testing.T) {
	loc := time.FixedZone("UTC+14", 14*60*60)

	history := NewSeeded(7, fixedClock(time.Date(2024, time.April, 1, 0, 30, 0, 0, loc))).History()
	require.Len(t, history.Labels, 91)
	assert.Contains(t, history.Labels, "2024-02-29")
	assert.Equal(t, "2024-04-01", history.Labels[90])
	for i := 1; i < len(history.Labels); i++ {
		assert.Less(t, history.Labels[i-1], history.Labels[i])
	}
}

func TestGenerator_SeedsDiffer(t *testing.T) {
	clock := fixedClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))

	a := NewSeeded(1, clock).History()
	b := NewSeeded(2, clock).History()
	assert.Equal(t, a.Labels, b.Labels)
	assert.NotEqual(t, a.Data, b.Data)

	again := NewSeeded(1, clock).History()
	assert.Equal(t, a, again)
}

func TestGenerator_ConcurrentUse(t *testing.T) {
	g := New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				assert.Len(t, g.Listings(), 4)
				h := g.History()
				assert.Equal(t, len(h.Labels), len(h.Data))
			}
		}()
	}
	wg.Wait()
}
