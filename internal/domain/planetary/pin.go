package planetary

import "time"

// PinKind discriminates the pin variants of a colony
type PinKind string

const (
	PinKindExtractor     PinKind = "extractor"
	PinKindFactory       PinKind = "factory"
	PinKindStorage       PinKind = "storage"
	PinKindCommandCenter PinKind = "command_center"
)

// Command center structure type ids, one per planet type
var commandCenterTypeIDs = map[int32]bool{
	2254: true, 2524: true, 2525: true, 2533: true,
	2534: true, 2549: true, 2550: true, 2551: true,
}

// Launchpad structure type ids, one per planet type
var launchpadTypeIDs = map[int32]bool{
	2256: true, 2542: true, 2543: true, 2544: true,
	2552: true, 2555: true, 2556: true, 2557: true,
}

// PinContent is an amount of one material held by a pin
type PinContent struct {
	TypeID int32 `json:"type_id"`
	Amount int64 `json:"amount"`
}

// ExtractorHead is one drilling head of an extractor control unit
type ExtractorHead struct {
	HeadID    int32   `json:"head_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ExtractorDetails is the extraction program of an extractor pin
type ExtractorDetails struct {
	CycleTime     int             // seconds
	HeadRadius    float64
	Heads         []ExtractorHead
	ProductTypeID int32
	QtyPerCycle   int64
}

// FactoryDetails references the schematic a factory is running
type FactoryDetails struct {
	SchematicID int32
}

// Pin is one structure on a planet. Kind selects which optional payload is meaningful:
// ExtractorDetails for extractors, FactoryDetails for factories.
type Pin struct {
	PinID          int64
	TypeID         int32
	Kind           PinKind
	Latitude       float64
	Longitude      float64
	InstallTime    *time.Time
	ExpiryTime     *time.Time
	LastCycleStart *time.Time
	SchematicID    *int32
	Contents       []PinContent

	ExtractorDetails *ExtractorDetails
	FactoryDetails   *FactoryDetails
}

// ClassifyPin derives the pin kind from its payloads and structure type
func ClassifyPin(typeID int32, extractor *ExtractorDetails, factory *FactoryDetails, schematicID *int32) PinKind {
	switch {
	case extractor != nil:
		return PinKindExtractor
	case factory != nil || schematicID != nil:
		return PinKindFactory
	case commandCenterTypeIDs[typeID]:
		return PinKindCommandCenter
	default:
		return PinKindStorage
	}
}

// IsLaunchpad reports whether the pin is a launchpad (a storage pin with customs access)
func (p *Pin) IsLaunchpad() bool {
	return p.Kind == PinKindStorage && launchpadTypeIDs[p.TypeID]
}

// IsExpired reports whether the pin's program has run out at the given time
func (p *Pin) IsExpired(now time.Time) bool {
	return p.ExpiryTime != nil && !now.Before(*p.ExpiryTime)
}

// EffectiveSchematicID returns the schematic a factory runs, preferring factory details
func (p *Pin) EffectiveSchematicID() (int32, bool) {
	if p.FactoryDetails != nil && p.FactoryDetails.SchematicID != 0 {
		return p.FactoryDetails.SchematicID, true
	}
	if p.SchematicID != nil && *p.SchematicID != 0 {
		return *p.SchematicID, true
	}
	return 0, false
}

// AmountOf returns how much of a material the pin holds
func (p *Pin) AmountOf(typeID int32) int64 {
	var total int64
	for _, c := range p.Contents {
		if c.TypeID == typeID {
			total += c.Amount
		}
	}
	return total
}

// HoldsStock reports whether this pin's contents count as stockpile inventory
func (p *Pin) HoldsStock() bool {
	return p.Kind == PinKindStorage
}
