package esi

import (
	"math"
	"time"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
)

type planetDTO struct {
	LastUpdate    time.Time `json:"last_update"`
	NumPins       int       `json:"num_pins"`
	OwnerID       int64     `json:"owner_id"`
	PlanetID      int64     `json:"planet_id"`
	PlanetType    string    `json:"planet_type"`
	SolarSystemID int64     `json:"solar_system_id"`
	UpgradeLevel  int       `json:"upgrade_level"`
}

func (p planetDTO) toDomain(characterID int64) planetary.Planet {
	owner := p.OwnerID
	if owner == 0 {
		owner = characterID
	}
	return planetary.Planet{
		OwnerID:       owner,
		PlanetID:      p.PlanetID,
		PlanetType:    p.PlanetType,
		SolarSystemID: p.SolarSystemID,
		NumPins:       p.NumPins,
		UpgradeLevel:  p.UpgradeLevel,
		LastUpdate:    p.LastUpdate,
	}
}

type colonyDTO struct {
	Links  []linkDTO  `json:"links"`
	Pins   []pinDTO   `json:"pins"`
	Routes []routeDTO `json:"routes"`
}

type linkDTO struct {
	DestinationPinID int64 `json:"destination_pin_id"`
	LinkLevel        int   `json:"link_level"`
	SourcePinID      int64 `json:"source_pin_id"`
}

type contentDTO struct {
	Amount int64 `json:"amount"`
	TypeID int32 `json:"type_id"`
}

type headDTO struct {
	HeadID    int32   `json:"head_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type extractorDTO struct {
	CycleTime     int       `json:"cycle_time"`
	HeadRadius    float64   `json:"head_radius"`
	Heads         []headDTO `json:"heads"`
	ProductTypeID int32     `json:"product_type_id"`
	QtyPerCycle   int64     `json:"qty_per_cycle"`
}

type factoryDTO struct {
	SchematicID int32 `json:"schematic_id"`
}

type pinDTO struct {
	Contents         []contentDTO  `json:"contents"`
	ExpiryTime       *time.Time    `json:"expiry_time"`
	ExtractorDetails *extractorDTO `json:"extractor_details"`
	FactoryDetails   *factoryDTO   `json:"factory_details"`
	InstallTime      *time.Time    `json:"install_time"`
	LastCycleStart   *time.Time    `json:"last_cycle_start"`
	Latitude         float64       `json:"latitude"`
	Longitude        float64       `json:"longitude"`
	PinID            int64         `json:"pin_id"`
	SchematicID      *int32        `json:"schematic_id"`
	TypeID           int32         `json:"type_id"`
}

type routeDTO struct {
	ContentTypeID    int32   `json:"content_type_id"`
	DestinationPinID int64   `json:"destination_pin_id"`
	Quantity         float64 `json:"quantity"`
	RouteID          int64   `json:"route_id"`
	SourcePinID      int64   `json:"source_pin_id"`
	Waypoints        []int64 `json:"waypoints"`
}

func (c colonyDTO) toDomain() *planetary.Colony {
	colony := &planetary.Colony{
		Links:  make([]planetary.Link, 0, len(c.Links)),
		Pins:   make([]planetary.Pin, 0, len(c.Pins)),
		Routes: make([]planetary.Route, 0, len(c.Routes)),
	}
	for _, l := range c.Links {
		colony.Links = append(colony.Links, planetary.Link{
			SourcePinID:      l.SourcePinID,
			DestinationPinID: l.DestinationPinID,
			LinkLevel:        l.LinkLevel,
		})
	}
	for _, p := range c.Pins {
		colony.Pins = append(colony.Pins, p.toDomain())
	}
	for _, r := range c.Routes {
		colony.Routes = append(colony.Routes, planetary.Route{
			RouteID:          r.RouteID,
			SourcePinID:      r.SourcePinID,
			DestinationPinID: r.DestinationPinID,
			ContentTypeID:    r.ContentTypeID,
			Quantity:         int64(math.Round(r.Quantity)),
			Waypoints:        r.Waypoints,
		})
	}
	return colony
}

func (p pinDTO) toDomain() planetary.Pin {
	pin := planetary.Pin{
		PinID:          p.PinID,
		TypeID:         p.TypeID,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		InstallTime:    p.InstallTime,
		ExpiryTime:     p.ExpiryTime,
		LastCycleStart: p.LastCycleStart,
		SchematicID:    p.SchematicID,
	}
	for _, content := range p.Contents {
		pin.Contents = append(pin.Contents, planetary.PinContent{TypeID: content.TypeID, Amount: content.Amount})
	}
	if e := p.ExtractorDetails; e != nil {
		details := &planetary.ExtractorDetails{
			CycleTime:     e.CycleTime,
			HeadRadius:    e.HeadRadius,
			ProductTypeID: e.ProductTypeID,
			QtyPerCycle:   e.QtyPerCycle,
		}
		for _, h := range e.Heads {
			details.Heads = append(details.Heads, planetary.ExtractorHead{HeadID: h.HeadID, Latitude: h.Latitude, Longitude: h.Longitude})
		}
		pin.ExtractorDetails = details
	}
	if p.FactoryDetails != nil {
		pin.FactoryDetails = &planetary.FactoryDetails{SchematicID: p.FactoryDetails.SchematicID}
	}
	pin.Kind = planetary.ClassifyPin(pin.TypeID, pin.ExtractorDetails, pin.FactoryDetails, pin.SchematicID)
	return pin
}
