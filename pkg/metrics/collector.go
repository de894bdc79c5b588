package metrics

import (
	"time"

	"github.com/cuemby/tracker-deployer/pkg/envstate"
	"github.com/cuemby/tracker-deployer/pkg/store"
)

var allPhases = []envstate.Phase{
	envstate.PhaseCreated,
	envstate.PhaseProvisioning,
	envstate.PhaseProvisioned,
	envstate.PhaseConfiguring,
	envstate.PhaseConfigured,
	envstate.PhaseReleasing,
	envstate.PhaseReleased,
	envstate.PhaseRunning,
	envstate.PhaseDestroying,
	envstate.PhaseDestroyed,
	envstate.PhaseFailed,
}

// Collector periodically re-lists the store and refreshes
// EnvironmentsTotal, the one gauge that can't be updated inline from a
// handler call since it reflects the whole population rather than a
// single invocation.
type Collector struct {
	store  *store.Store
	stopCh chan struct{}
}

// NewCollector builds a collector over the given store.
func NewCollector(s *store.Store) *Collector {
	return &Collector{
		store:  s,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting on a 15s tick.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts the collector goroutine.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectEnvironmentMetrics()
}

func (c *Collector) collectEnvironmentMetrics() {
	names, err := c.store.List()
	if err != nil {
		return
	}

	counts := map[envstate.Phase]int{}
	for _, name := range names {
		rec, err := c.store.Load(name)
		if err != nil {
			continue
		}
		counts[rec.State.Phase]++
	}

	for _, phase := range allPhases {
		EnvironmentsTotal.WithLabelValues(string(phase)).Set(float64(counts[phase]))
	}
}
