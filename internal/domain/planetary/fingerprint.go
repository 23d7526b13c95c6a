package planetary

import (
	"encoding/hex"
	"encoding/json"
	"sort"

	"lukechampine.com/blake3"
)

// Fingerprint digests the content of a colony so an unchanged re-sync can be detected.
// Pins, links and routes are ordered first so upstream ordering does not matter.
func Fingerprint(planet Planet, colony Colony) (string, error) {
	pins := append([]Pin(nil), colony.Pins...)
	sort.Slice(pins, func(i, j int) bool { return pins[i].PinID < pins[j].PinID })

	links := append([]Link(nil), colony.Links...)
	sort.Slice(links, func(i, j int) bool {
		if links[i].SourcePinID != links[j].SourcePinID {
			return links[i].SourcePinID < links[j].SourcePinID
		}
		return links[i].DestinationPinID < links[j].DestinationPinID
	})

	routes := append([]Route(nil), colony.Routes...)
	sort.Slice(routes, func(i, j int) bool { return routes[i].RouteID < routes[j].RouteID })

	canonical := struct {
		PlanetType    string
		SolarSystemID int64
		UpgradeLevel  int
		LastUpdate    int64
		Pins          []Pin
		Links         []Link
		Routes        []Route
	}{
		PlanetType:    planet.PlanetType,
		SolarSystemID: planet.SolarSystemID,
		UpgradeLevel:  planet.UpgradeLevel,
		LastUpdate:    planet.LastUpdate.Unix(),
		Pins:          pins,
		Links:         links,
		Routes:        routes,
	}

	data, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
