package collect

import (
	"context"
	"math/rand"
	"time"

	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/threat"
)

// simulatedItems is the canned batch covering every category, used when no
// live source returns data.
var simulatedItems = []struct {
	category category.ID
	title    string
	content  string
}{
	{
		category: category.Terror,
		title:    "Suspicious vehicle reported near Incheon Airport terminal",
		content:  "A vehicle showing suspicious behavior was found near Terminal 3 of Incheon Airport and the security team was dispatched. The investigation is ongoing; the likelihood of a terror connection is assessed as low.",
	},
	{
		category: category.Cyber,
		title:    "Hacking attempt detected against airline reservation system",
		content:  "A hacking attempt against the reservation system of a major domestic airline was detected. The security systems blocked the attack and no customer data breach has been confirmed.",
	},
	{
		category: category.Smuggling,
		title:    "Narcotics smuggling intercepted at Incheon Airport customs",
		content:  "Customs officers at Incheon International Airport intercepted narcotics smuggled on a flight arriving from Southeast Asia. Two suspects were arrested.",
	},
	{
		category: category.Drone,
		title:    "Illegal drone intrusion detected in Incheon Airport no-fly zone",
		content:  "An unauthorized drone entered the no-fly zone around Incheon Airport, temporarily halting runway operations. The drone was removed and normal operations resumed.",
	},
	{
		category: category.Insider,
		title:    "Airport security staff suspected of leaking internal information",
		content:  "Signs that internal security information from Incheon Airport was leaked externally have been detected and an investigation is underway. An audit of the staff involved is in progress.",
	},
	{
		category: category.Geopolitical,
		title:    "Flights rerouted after North Korea missile launch",
		content:  "Several international flights were rerouted following a missile launch by North Korea. Incheon Airport operations were not directly affected.",
	},
}

// SimulatedCollector fabricates a deterministic-shape batch with randomized
// recency, one item per category.
type SimulatedCollector struct {
	now  func() time.Time
	rand *rand.Rand
}

// NewSimulatedCollector creates the fallback collector.
func NewSimulatedCollector() *SimulatedCollector {
	return &SimulatedCollector{
		now:  time.Now,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Name returns the source identifier.
func (c *SimulatedCollector) Name() string {
	return "simulation"
}

// Collect returns the canned batch with timestamps spread over the last 24h.
func (c *SimulatedCollector) Collect(_ context.Context) ([]threat.CandidateItem, error) {
	now := c.now()
	items := make([]threat.CandidateItem, 0, len(simulatedItems))
	for _, sim := range simulatedItems {
		age := time.Duration(c.rand.Int63n(int64(24 * time.Hour)))
		items = append(items, threat.CandidateItem{
			Title:        sim.title,
			Content:      sim.content,
			Source:       "simulation",
			SourceType:   "simulated",
			SourceName:   "ARGUS Simulator",
			PublishedAt:  now.Add(-age),
			CategoryHint: sim.category,
		})
	}
	return items, nil
}
