// Package detector decides when a list view has grown and an arrival alert
// is due.
package detector

import (
	"sort"
	"sync"
)

// Round is the set of list lengths observed in one snapshot round, keyed by
// view name. A round usually holds a single view.
type Round map[string]int

// Arrival describes one alert-worthy round.
type Arrival struct {
	Grown  []string       // views that grew, sorted
	Counts map[string]int // lengths after the round
}

// Detector tracks the last seen length of each list view. The first length
// seen for a view after New or Reset is its baseline and never alerts, so an
// existing backlog at startup stays quiet.
type Detector struct {
	mu     sync.Mutex
	prev   map[string]int
	notify func(Arrival)
}

// New returns a detector that calls notify once per round in which any view
// grew. notify may be nil.
func New(notify func(Arrival)) *Detector {
	return &Detector{prev: make(map[string]int), notify: notify}
}

// Observe records a round and reports whether it raised an alert. At most
// one alert is raised per round, however many views or items grew.
func (d *Detector) Observe(round Round) bool {
	d.mu.Lock()
	var grown []string
	counts := make(map[string]int, len(d.prev)+len(round))
	for view, n := range round {
		if prev, seen := d.prev[view]; seen && n > prev {
			grown = append(grown, view)
		}
		d.prev[view] = n
	}
	for view, n := range d.prev {
		counts[view] = n
	}
	d.mu.Unlock()

	if len(grown) == 0 {
		return false
	}
	sort.Strings(grown)
	if d.notify != nil {
		d.notify(Arrival{Grown: grown, Counts: counts})
	}
	return true
}

// Reset forgets all baselines; the next round for each view is a baseline
// again.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prev = make(map[string]int)
}

// Baseline returns the tracked length of view and whether one is recorded.
func (d *Detector) Baseline(view string) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.prev[view]
	return n, ok
}
