package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
)

// GormColonyRepository implements planetary.ColonyRepository using GORM.
// A planet row and its pins, links and routes are always written together.
type GormColonyRepository struct {
	db *gorm.DB
}

// NewGormColonyRepository creates a new GORM colony repository
func NewGormColonyRepository(db *gorm.DB) *GormColonyRepository {
	return &GormColonyRepository{db: db}
}

// ReplaceColony stores the snapshot in one transaction. When the stored fingerprint
// matches only synced_at is refreshed and changed is false.
func (r *GormColonyRepository) ReplaceColony(ctx context.Context, snapshot *planetary.PlanetSnapshot) (bool, error) {
	planet := snapshot.Planet
	changed := true

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing PlanetModel
		err := tx.Where("character_id = ? AND planet_id = ?", planet.OwnerID, planet.PlanetID).First(&existing).Error
		switch {
		case err == nil:
			if planet.Fingerprint != "" && existing.Fingerprint == planet.Fingerprint {
				changed = false
				return tx.Model(&PlanetModel{}).
					Where("character_id = ? AND planet_id = ?", planet.OwnerID, planet.PlanetID).
					Update("synced_at", planet.SyncedAt).Error
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to load planet: %w", err)
		}

		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(planetToModel(&planet)).Error; err != nil {
			return fmt.Errorf("failed to save planet: %w", err)
		}
		if err := deleteColonyRows(tx, planet.OwnerID, planet.PlanetID); err != nil {
			return err
		}

		pins, err := pinsToModels(planet.OwnerID, planet.PlanetID, snapshot.Colony.Pins)
		if err != nil {
			return err
		}
		if len(pins) > 0 {
			if err := tx.CreateInBatches(pins, 100).Error; err != nil {
				return fmt.Errorf("failed to insert pins: %w", err)
			}
		}

		links := linksToModels(planet.OwnerID, planet.PlanetID, snapshot.Colony.Links)
		if len(links) > 0 {
			if err := tx.CreateInBatches(links, 100).Error; err != nil {
				return fmt.Errorf("failed to insert links: %w", err)
			}
		}

		routes, err := routesToModels(planet.OwnerID, planet.PlanetID, snapshot.Colony.Routes)
		if err != nil {
			return err
		}
		if len(routes) > 0 {
			if err := tx.CreateInBatches(routes, 100).Error; err != nil {
				return fmt.Errorf("failed to insert routes: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// PruneMissing deletes the character's planets that are not in keepPlanetIDs
// and returns how many were removed
func (r *GormColonyRepository) PruneMissing(ctx context.Context, characterID int64, keepPlanetIDs []int64) (int, error) {
	pruned := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&PlanetModel{}).Where("character_id = ?", characterID)
		if len(keepPlanetIDs) > 0 {
			query = query.Where("planet_id NOT IN ?", keepPlanetIDs)
		}
		var stale []int64
		if err := query.Pluck("planet_id", &stale).Error; err != nil {
			return fmt.Errorf("failed to find stale planets: %w", err)
		}

		for _, planetID := range stale {
			if err := deleteColonyRows(tx, characterID, planetID); err != nil {
				return err
			}
			if err := tx.Where("character_id = ? AND planet_id = ?", characterID, planetID).
				Delete(&PlanetModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete planet %d: %w", planetID, err)
			}
		}
		pruned = len(stale)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pruned, nil
}

// snapshotReadTx makes the four colony reads see one committed state: Postgres serves
// them from a single snapshot and SQLite holds its read lock until the end
var snapshotReadTx = &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}

// FindByCharacters loads every stored snapshot of the given characters. A replacement
// committed while the read is running is either fully visible or not at all.
func (r *GormColonyRepository) FindByCharacters(ctx context.Context, characterIDs []int64) ([]*planetary.PlanetSnapshot, error) {
	if len(characterIDs) == 0 {
		return nil, nil
	}

	var (
		planets []PlanetModel
		pins    []PlanetPinModel
		links   []PlanetLinkModel
		routes  []PlanetRouteModel
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("character_id IN ?", characterIDs).
			Order("character_id, planet_id").
			Find(&planets).Error; err != nil {
			return fmt.Errorf("failed to load planets: %w", err)
		}
		if err := tx.Where("character_id IN ?", characterIDs).Order("pin_id").Find(&pins).Error; err != nil {
			return fmt.Errorf("failed to load pins: %w", err)
		}
		if err := tx.Where("character_id IN ?", characterIDs).Order("id").Find(&links).Error; err != nil {
			return fmt.Errorf("failed to load links: %w", err)
		}
		if err := tx.Where("character_id IN ?", characterIDs).Order("route_id").Find(&routes).Error; err != nil {
			return fmt.Errorf("failed to load routes: %w", err)
		}
		return nil
	}, snapshotReadTx)
	if err != nil {
		return nil, err
	}

	type planetKey struct{ characterID, planetID int64 }
	snapshots := make([]*planetary.PlanetSnapshot, 0, len(planets))
	byKey := make(map[planetKey]*planetary.PlanetSnapshot, len(planets))
	for i := range planets {
		s := &planetary.PlanetSnapshot{Planet: modelToPlanet(&planets[i])}
		snapshots = append(snapshots, s)
		byKey[planetKey{planets[i].CharacterID, planets[i].PlanetID}] = s
	}

	for i := range pins {
		s, ok := byKey[planetKey{pins[i].CharacterID, pins[i].PlanetID}]
		if !ok {
			continue
		}
		pin, err := modelToPin(&pins[i])
		if err != nil {
			return nil, err
		}
		s.Colony.Pins = append(s.Colony.Pins, pin)
	}
	for i := range links {
		if s, ok := byKey[planetKey{links[i].CharacterID, links[i].PlanetID}]; ok {
			s.Colony.Links = append(s.Colony.Links, planetary.Link{
				SourcePinID:      links[i].SourcePinID,
				DestinationPinID: links[i].DestinationPinID,
				LinkLevel:        links[i].LinkLevel,
			})
		}
	}
	for i := range routes {
		s, ok := byKey[planetKey{routes[i].CharacterID, routes[i].PlanetID}]
		if !ok {
			continue
		}
		route, err := modelToRoute(&routes[i])
		if err != nil {
			return nil, err
		}
		s.Colony.Routes = append(s.Colony.Routes, route)
	}

	return snapshots, nil
}

// FindOne loads a single stored snapshot
func (r *GormColonyRepository) FindOne(ctx context.Context, characterID, planetID int64) (*planetary.PlanetSnapshot, error) {
	snapshots, err := r.FindByCharacters(ctx, []int64{characterID})
	if err != nil {
		return nil, err
	}
	for _, s := range snapshots {
		if s.Planet.PlanetID == planetID {
			return s, nil
		}
	}
	return nil, fmt.Errorf("planet %d of character %d: %w", planetID, characterID, shared.ErrColonyNotFound)
}

func deleteColonyRows(tx *gorm.DB, characterID, planetID int64) error {
	for _, model := range []interface{}{&PlanetPinModel{}, &PlanetLinkModel{}, &PlanetRouteModel{}} {
		if err := tx.Where("character_id = ? AND planet_id = ?", characterID, planetID).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear colony rows: %w", err)
		}
	}
	return nil
}

func planetToModel(p *planetary.Planet) *PlanetModel {
	return &PlanetModel{
		CharacterID:   p.OwnerID,
		PlanetID:      p.PlanetID,
		PlanetType:    p.PlanetType,
		SolarSystemID: p.SolarSystemID,
		NumPins:       p.NumPins,
		UpgradeLevel:  p.UpgradeLevel,
		LastUpdate:    p.LastUpdate,
		SyncedAt:      p.SyncedAt,
		Fingerprint:   p.Fingerprint,
	}
}

func modelToPlanet(m *PlanetModel) planetary.Planet {
	return planetary.Planet{
		OwnerID:       m.CharacterID,
		PlanetID:      m.PlanetID,
		PlanetType:    m.PlanetType,
		SolarSystemID: m.SolarSystemID,
		NumPins:       m.NumPins,
		UpgradeLevel:  m.UpgradeLevel,
		LastUpdate:    m.LastUpdate,
		SyncedAt:      m.SyncedAt,
		Fingerprint:   m.Fingerprint,
	}
}

func pinsToModels(characterID, planetID int64, pins []planetary.Pin) ([]PlanetPinModel, error) {
	models := make([]PlanetPinModel, 0, len(pins))
	for i := range pins {
		p := &pins[i]
		contents, err := json.Marshal(p.Contents)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal contents of pin %d: %w", p.PinID, err)
		}
		model := PlanetPinModel{
			CharacterID:    characterID,
			PlanetID:       planetID,
			PinID:          p.PinID,
			TypeID:         p.TypeID,
			Kind:           string(p.Kind),
			Latitude:       p.Latitude,
			Longitude:      p.Longitude,
			InstallTime:    p.InstallTime,
			ExpiryTime:     p.ExpiryTime,
			LastCycleStart: p.LastCycleStart,
			SchematicID:    p.SchematicID,
			Contents:       datatypes.JSON(contents),
		}
		if p.FactoryDetails != nil {
			schematicID := p.FactoryDetails.SchematicID
			model.FactorySchematic = &schematicID
		}
		if p.ExtractorDetails != nil {
			details, err := json.Marshal(p.ExtractorDetails)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal extractor of pin %d: %w", p.PinID, err)
			}
			model.ExtractorDetails = datatypes.JSON(details)
		}
		models = append(models, model)
	}
	return models, nil
}

func modelToPin(m *PlanetPinModel) (planetary.Pin, error) {
	pin := planetary.Pin{
		PinID:          m.PinID,
		TypeID:         m.TypeID,
		Kind:           planetary.PinKind(m.Kind),
		Latitude:       m.Latitude,
		Longitude:      m.Longitude,
		InstallTime:    m.InstallTime,
		ExpiryTime:     m.ExpiryTime,
		LastCycleStart: m.LastCycleStart,
		SchematicID:    m.SchematicID,
	}
	if len(m.Contents) > 0 {
		if err := json.Unmarshal(m.Contents, &pin.Contents); err != nil {
			return pin, fmt.Errorf("failed to unmarshal contents of pin %d: %w", m.PinID, err)
		}
	}
	if len(m.ExtractorDetails) > 0 && string(m.ExtractorDetails) != "null" {
		var details planetary.ExtractorDetails
		if err := json.Unmarshal(m.ExtractorDetails, &details); err != nil {
			return pin, fmt.Errorf("failed to unmarshal extractor of pin %d: %w", m.PinID, err)
		}
		pin.ExtractorDetails = &details
	}
	if m.FactorySchematic != nil {
		pin.FactoryDetails = &planetary.FactoryDetails{SchematicID: *m.FactorySchematic}
	}
	return pin, nil
}

func linksToModels(characterID, planetID int64, links []planetary.Link) []PlanetLinkModel {
	models := make([]PlanetLinkModel, 0, len(links))
	for _, l := range links {
		models = append(models, PlanetLinkModel{
			CharacterID:      characterID,
			PlanetID:         planetID,
			SourcePinID:      l.SourcePinID,
			DestinationPinID: l.DestinationPinID,
			LinkLevel:        l.LinkLevel,
		})
	}
	return models
}

func routesToModels(characterID, planetID int64, routes []planetary.Route) ([]PlanetRouteModel, error) {
	models := make([]PlanetRouteModel, 0, len(routes))
	for _, r := range routes {
		waypoints, err := json.Marshal(r.Waypoints)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal waypoints of route %d: %w", r.RouteID, err)
		}
		models = append(models, PlanetRouteModel{
			CharacterID:      characterID,
			PlanetID:         planetID,
			RouteID:          r.RouteID,
			SourcePinID:      r.SourcePinID,
			DestinationPinID: r.DestinationPinID,
			ContentTypeID:    r.ContentTypeID,
			Quantity:         r.Quantity,
			Waypoints:        datatypes.JSON(waypoints),
		})
	}
	return models, nil
}

func modelToRoute(m *PlanetRouteModel) (planetary.Route, error) {
	route := planetary.Route{
		RouteID:          m.RouteID,
		SourcePinID:      m.SourcePinID,
		DestinationPinID: m.DestinationPinID,
		ContentTypeID:    m.ContentTypeID,
		Quantity:         m.Quantity,
	}
	if len(m.Waypoints) > 0 {
		if err := json.Unmarshal(m.Waypoints, &route.Waypoints); err != nil {
			return route, fmt.Errorf("failed to unmarshal waypoints of route %d: %w", m.RouteID, err)
		}
	}
	return route, nil
}
