package helpers

import (
	"time"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
)

// Fixture type IDs shared by colony tests
const (
	ExtractorTypeID int32 = 3060
	FactoryTypeID   int32 = 2473
	LaunchpadTypeID int32 = 2544
	StorageTypeID   int32 = 2541

	BaseMetalsTypeID   int32 = 2267
	ReactiveMtlTypeID  int32 = 2398
	ReactiveSchematic  int32 = 127
	FixtureSolarSystem int64 = 30000379
)

// Pin IDs used by SampleColony
const (
	SampleExtractorPin int64 = 1001
	SampleFactoryPin   int64 = 1002
	SampleLaunchpadPin int64 = 1003
)

// SampleColony builds a small working colony: an extractor feeding a basic factory
// whose output is routed to a launchpad holding some stock
func SampleColony(expiry time.Time) planetary.Colony {
	schematic := ReactiveSchematic
	return planetary.Colony{
		Pins: []planetary.Pin{
			{
				PinID:      SampleExtractorPin,
				TypeID:     ExtractorTypeID,
				Kind:       planetary.PinKindExtractor,
				ExpiryTime: &expiry,
				ExtractorDetails: &planetary.ExtractorDetails{
					CycleTime:     1800,
					HeadRadius:    0.02,
					Heads:         []planetary.ExtractorHead{{HeadID: 0, Latitude: 1.1, Longitude: 0.4}},
					ProductTypeID: BaseMetalsTypeID,
					QtyPerCycle:   9000,
				},
			},
			{
				PinID:          SampleFactoryPin,
				TypeID:         FactoryTypeID,
				Kind:           planetary.PinKindFactory,
				FactoryDetails: &planetary.FactoryDetails{SchematicID: schematic},
			},
			{
				PinID:    SampleLaunchpadPin,
				TypeID:   LaunchpadTypeID,
				Kind:     planetary.PinKindStorage,
				Contents: []planetary.PinContent{{TypeID: ReactiveMtlTypeID, Amount: 500}},
			},
		},
		Links: []planetary.Link{
			{SourcePinID: SampleExtractorPin, DestinationPinID: SampleFactoryPin},
			{SourcePinID: SampleFactoryPin, DestinationPinID: SampleLaunchpadPin, LinkLevel: 1},
		},
		Routes: []planetary.Route{
			{
				RouteID:          1,
				SourcePinID:      SampleExtractorPin,
				DestinationPinID: SampleFactoryPin,
				ContentTypeID:    BaseMetalsTypeID,
				Quantity:         3000,
				Waypoints:        []int64{SampleExtractorPin, SampleFactoryPin},
			},
			{
				RouteID:          2,
				SourcePinID:      SampleFactoryPin,
				DestinationPinID: SampleLaunchpadPin,
				ContentTypeID:    ReactiveMtlTypeID,
				Quantity:         20,
				Waypoints:        []int64{SampleFactoryPin, SampleLaunchpadPin},
			},
		},
	}
}

// SamplePlanet builds the planet header matching SampleColony
func SamplePlanet(characterID, planetID int64, lastUpdate time.Time) planetary.Planet {
	return planetary.Planet{
		OwnerID:       characterID,
		PlanetID:      planetID,
		PlanetType:    "barren",
		SolarSystemID: FixtureSolarSystem,
		NumPins:       3,
		UpgradeLevel:  4,
		LastUpdate:    lastUpdate,
	}
}

// SampleSnapshot pairs SamplePlanet with SampleColony
func SampleSnapshot(characterID, planetID int64, now time.Time) *planetary.PlanetSnapshot {
	return &planetary.PlanetSnapshot{
		Planet: SamplePlanet(characterID, planetID, now.Add(-time.Hour)),
		Colony: SampleColony(now.Add(48 * time.Hour)),
	}
}

// SampleReference returns reference data covering SampleColony. Reactive Metals sell
// at 400 (buy 300) and Base Metals at 5 (buy 3).
func SampleReference() *MockReferenceProvider {
	return NewMockReferenceProvider().
		AddMaterial(BaseMetalsTypeID, "Base Metals", planetary.TierR0).
		AddMaterial(ReactiveMtlTypeID, "Reactive Metals", planetary.TierP1).
		AddSchematic(&planetary.Schematic{
			SchematicID:      ReactiveSchematic,
			Name:             "Reactive Metals",
			CycleTimeSeconds: 3600,
			Inputs:           []planetary.SchematicQuantity{{TypeID: BaseMetalsTypeID, Quantity: 500}},
			Output:           planetary.SchematicQuantity{TypeID: ReactiveMtlTypeID, Quantity: 20},
		}).
		SetPrice(BaseMetalsTypeID, 3, 5).
		SetPrice(ReactiveMtlTypeID, 300, 400).
		AddSolarSystem(FixtureSolarSystem, "Amarr")
}
