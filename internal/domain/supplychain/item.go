package supplychain

import (
	"sort"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
)

// Source classifies where a material's supply comes from
type Source string

const (
	SourceExtracted Source = "extracted"
	SourceProduced  Source = "produced"
	SourceMixed     Source = "mixed"
	SourceBought    Source = "bought"
)

// Contributor is one planet's share of a material's production or consumption
type Contributor struct {
	CharacterID     int64
	CharacterName   string
	PlanetID        int64
	PlanetType      string
	SolarSystemName string
	RatePerHour     float64
}

// Item is the derived supply-chain view of one material. It is recomputed on every read.
type Item struct {
	TypeID          int32
	Name            string
	Tier            planetary.Tier
	Source          Source
	ProducedPerHour float64
	ConsumedPerHour float64
	NetPerHour      float64
	CurrentStock    int64
	StockpileQty    int64

	// DepletionHours is nil when the material is not depleting
	DepletionHours *float64

	Producers        []Contributor
	Consumers        []Contributor
	StockpileMarkers []*stockpile.Marker
}

// TierName returns the tier label used by the UI
func (i *Item) TierName() string {
	return string(i.Tier)
}

// IsDepleting reports whether a finite depletion forecast exists
func (i *Item) IsDepleting() bool {
	return i.DepletionHours != nil
}

// ForecastDepletion returns stock/consumed when the material is net-negative with stock
// and consumption, otherwise nil ("not depleting").
func ForecastDepletion(netPerHour, consumedPerHour float64, currentStock int64) *float64 {
	if netPerHour >= 0 || currentStock <= 0 || consumedPerHour <= 0 {
		return nil
	}
	hours := float64(currentStock) / consumedPerHour
	return &hours
}

// Scope narrows aggregation. Zero fields mean "all". A launchpad scope requires the
// character and planet of the launchpad.
type Scope struct {
	CharacterID    int64
	PlanetID       int64
	LaunchpadPinID int64
}

// IsLaunchpad reports whether the scope is a single launchpad's network
func (s Scope) IsLaunchpad() bool {
	return s.LaunchpadPinID != 0
}

// Includes reports whether a planet is inside the scope
func (s Scope) Includes(characterID, planetID int64) bool {
	if s.CharacterID != 0 && s.CharacterID != characterID {
		return false
	}
	if s.PlanetID != 0 && s.PlanetID != planetID {
		return false
	}
	return true
}

// SortItems orders items by tier, then net rate ascending (worst deficits first), then name
func SortItems(items []*Item) {
	sort.SliceStable(items, func(a, b int) bool {
		ia, ib := items[a], items[b]
		if ia.Tier.Rank() != ib.Tier.Rank() {
			return ia.Tier.Rank() < ib.Tier.Rank()
		}
		if ia.NetPerHour != ib.NetPerHour {
			return ia.NetPerHour < ib.NetPerHour
		}
		return ia.Name < ib.Name
	})
}
