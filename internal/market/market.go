package market

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// HistoryDays is the number of trailing days before today covered by History.
	HistoryDays = 90
	dateLayout  = "2006-01-02"
	listingSize = "10.5 US"
)

// Listing is one synthetic offer from a resale or retail source.
type Listing struct {
	Name      string `json:"name"`
	Logo      string `json:"logo"`
	Condition string `json:"condition"`
	Size      string `json:"size"`
	Price     int    `json:"price"`
}

// History is a daily price series; Labels and Data always have the same length.
type History struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

type source struct {
	name      string
	logo      string
	condition string
	// offset range applied to the shared base price, inclusive
	minOffset int
	maxOffset int
}

var sources = []source{
	{name: "StockX", logo: "https://placehold.co/32x32/000000/FFFFFF?text=S", condition: "New", minOffset: 0, maxOffset: 50},
	{name: "GOAT", logo: "https://placehold.co/32x32/4A4A4A/FFFFFF?text=G", condition: "New", minOffset: 5, maxOffset: 55},
	{name: "eBay", logo: "https://placehold.co/32x32/E53238/FFFFFF?text=e", condition: "Used (9/10)", minOffset: -50, maxOffset: -20},
	{name: "Flight Club", logo: "https://placehold.co/32x32/111111/FFFFFF?text=FC", condition: "New", minOffset: 15, maxOffset: 60},
}

// Generator produces mock market data. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New returns a randomly seeded generator using the wall clock.
func New() *Generator {
	return NewSeeded(rand.Uint64(), time.Now)
}

// NewSeeded returns a deterministic generator for the given seed and clock.
func NewSeeded(seed uint64, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: now,
	}
}

// Listings returns one listing per source, each jittered around a shared base price.
func (g *Generator) Listings() []Listing {
	g.mu.Lock()
	defer g.mu.Unlock()

	base := 200 + g.rng.IntN(301)
	listings := make([]Listing, 0, len(sources))
	for _, src := range sources {
		offset := src.minOffset + g.rng.IntN(src.maxOffset-src.minOffset+1)
		listings = append(listings, Listing{
			Name:      src.name,
			Logo:      src.logo,
			Condition: src.condition,
			Size:      listingSize,
			Price:     base + offset,
		})
	}
	return listings
}

// History returns HistoryDays+1 daily points ending today, oldest first. Each value is the base
// price plus a fluctuation in [-10, 10) and an upward trend of 0.5 per day.
func (g *Generator) History() History {
	g.mu.Lock()
	defer g.mu.Unlock()

	today := g.now()
	base := float64(250 + g.rng.IntN(151))

	history := History{
		Labels: make([]string, 0, HistoryDays+1),
		Data:   make([]float64, 0, HistoryDays+1),
	}
	for i := HistoryDays; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		fluctuation := (g.rng.Float64() - 0.5) * 20
		trend := float64(HistoryDays-i) * 0.5

		history.Labels = append(history.Labels, date.Format(dateLayout))
		history.Data = append(history.Data, round2(base+fluctuation+trend))
	}
	return history
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
