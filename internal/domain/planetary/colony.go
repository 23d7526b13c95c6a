package planetary

import (
	"fmt"
	"time"
)

// Planet is the metadata of one colonized planet owned by a character
type Planet struct {
	OwnerID       int64
	PlanetID      int64
	PlanetType    string
	SolarSystemID int64
	NumPins       int
	UpgradeLevel  int
	LastUpdate    time.Time // upstream: last time the owner touched the colony
	SyncedAt      time.Time // last time a snapshot for this planet was committed
	Fingerprint   string
}

// Link is an undirected capacity edge between two pins of the same planet
type Link struct {
	SourcePinID      int64
	DestinationPinID int64
	LinkLevel        int
}

// Route is a directed material flow assignment along a path of links
type Route struct {
	RouteID          int64
	SourcePinID      int64
	DestinationPinID int64
	ContentTypeID    int32
	Quantity         int64
	Waypoints        []int64
}

// Colony is the full network of one planet at the latest successful sync
type Colony struct {
	Links  []Link
	Pins   []Pin
	Routes []Route
}

// PlanetSnapshot pairs planet metadata with its committed colony
type PlanetSnapshot struct {
	Planet Planet
	Colony Colony
}

// Validate checks that every pin referenced by a link or route endpoint exists.
// Route waypoints are exempt: a waypoint outside the pin set is a customs office.
func (c *Colony) Validate() error {
	pins := c.pinSet()
	for _, l := range c.Links {
		if !pins[l.SourcePinID] || !pins[l.DestinationPinID] {
			return fmt.Errorf("link %d-%d references an unknown pin", l.SourcePinID, l.DestinationPinID)
		}
	}
	for _, r := range c.Routes {
		if !pins[r.SourcePinID] || !pins[r.DestinationPinID] {
			return fmt.Errorf("route %d references an unknown pin", r.RouteID)
		}
	}
	return nil
}

// PinByID looks up a pin in the snapshot
func (c *Colony) PinByID(pinID int64) (*Pin, bool) {
	for i := range c.Pins {
		if c.Pins[i].PinID == pinID {
			return &c.Pins[i], true
		}
	}
	return nil, false
}

func (c *Colony) pinSet() map[int64]bool {
	pins := make(map[int64]bool, len(c.Pins))
	for _, p := range c.Pins {
		pins[p.PinID] = true
	}
	return pins
}

// CustomsCrossings counts how many times a route leaves the planet's network through
// orbit. Each maximal run of off-planet waypoints is one crossing.
func (c *Colony) CustomsCrossings(r Route) int {
	pins := c.pinSet()
	crossings := 0
	offPlanet := false
	for _, wp := range r.Waypoints {
		if pins[wp] {
			offPlanet = false
			continue
		}
		if !offPlanet {
			crossings++
		}
		offPlanet = true
	}
	return crossings
}

// RoutedPinIDs returns every pin that has a route to or from the given pin, plus the pin itself
func (c *Colony) RoutedPinIDs(pinID int64) map[int64]bool {
	ids := map[int64]bool{pinID: true}
	for _, r := range c.Routes {
		if r.SourcePinID == pinID {
			ids[r.DestinationPinID] = true
		}
		if r.DestinationPinID == pinID {
			ids[r.SourcePinID] = true
		}
	}
	return ids
}
