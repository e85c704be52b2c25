package compiler

import (
	"sort"

	"github.com/zurustar/midiweave/pkg/event"
)

// sortEventsByDelta stable-sorts a stream by delta time. Transforms
// that inject or displace events call this to restore ordering without
// disturbing same-tick neighbors.
func sortEventsByDelta(events []event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Delta < events[j].Delta
	})
}
