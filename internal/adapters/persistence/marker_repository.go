package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
)

const markerOrder = "type_id, owner_type, owner_id, location_id, container_id, division_number"

var markerKeyColumns = []clause.Column{
	{Name: "user_id"},
	{Name: "type_id"},
	{Name: "owner_type"},
	{Name: "owner_id"},
	{Name: "location_id"},
	{Name: "container_id"},
	{Name: "division_number"},
}

// GormMarkerRepository implements stockpile.MarkerRepository using GORM
type GormMarkerRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormMarkerRepository creates a new GORM marker repository.
// If clock is nil, uses RealClock.
func NewGormMarkerRepository(db *gorm.DB, clock shared.Clock) *GormMarkerRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormMarkerRepository{db: db, clock: clock}
}

// ListByUser returns every marker of a user in key order
func (r *GormMarkerRepository) ListByUser(ctx context.Context, userID int64) ([]*stockpile.Marker, error) {
	var models []StockpileMarkerModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(markerOrder).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list markers: %w", err)
	}
	return modelsToMarkers(models), nil
}

// ListByType returns a user's markers for one material in key order
func (r *GormMarkerRepository) ListByType(ctx context.Context, userID int64, typeID int32) ([]*stockpile.Marker, error) {
	var models []StockpileMarkerModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND type_id = ?", userID, typeID).
		Order(markerOrder).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list markers: %w", err)
	}
	return modelsToMarkers(models), nil
}

// Upsert inserts the marker or updates the desired quantity of the marker with the same key
func (r *GormMarkerRepository) Upsert(ctx context.Context, marker *stockpile.Marker) error {
	if err := marker.Key.ValidateOptionalParts(); err != nil {
		return err
	}
	model := markerToModel(marker, r.clock.Now())
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   markerKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{"desired_quantity", "updated_at"}),
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert marker: %w", result.Error)
	}
	return nil
}

// Delete removes the marker with the given key
func (r *GormMarkerRepository) Delete(ctx context.Context, key stockpile.MarkerKey) error {
	if err := key.ValidateOptionalParts(); err != nil {
		return err
	}
	model := markerToModel(&stockpile.Marker{Key: key}, time.Time{})
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND type_id = ? AND owner_type = ? AND owner_id = ? AND location_id = ? AND container_id = ? AND division_number = ?",
			model.UserID, model.TypeID, model.OwnerType, model.OwnerID, model.LocationID, model.ContainerID, model.DivisionNumber).
		Delete(&StockpileMarkerModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete marker: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", key, shared.ErrMarkerNotFound)
	}
	return nil
}

// markerToModel stores an absent container or division as 0, which a valid key never uses
func markerToModel(m *stockpile.Marker, now time.Time) *StockpileMarkerModel {
	model := &StockpileMarkerModel{
		UserID:          m.Key.UserID,
		TypeID:          m.Key.TypeID,
		OwnerType:       string(m.Key.OwnerType),
		OwnerID:         m.Key.OwnerID,
		LocationID:      m.Key.LocationID,
		DesiredQuantity: m.DesiredQuantity,
		UpdatedAt:       now,
	}
	if m.Key.ContainerID != nil {
		model.ContainerID = *m.Key.ContainerID
	}
	if m.Key.DivisionNumber != nil {
		model.DivisionNumber = *m.Key.DivisionNumber
	}
	return model
}

func modelsToMarkers(models []StockpileMarkerModel) []*stockpile.Marker {
	markers := make([]*stockpile.Marker, 0, len(models))
	for i := range models {
		m := &models[i]
		key := stockpile.MarkerKey{
			UserID:     m.UserID,
			TypeID:     m.TypeID,
			OwnerType:  stockpile.OwnerType(m.OwnerType),
			OwnerID:    m.OwnerID,
			LocationID: m.LocationID,
		}
		if m.ContainerID != 0 {
			containerID := m.ContainerID
			key.ContainerID = &containerID
		}
		if m.DivisionNumber != 0 {
			division := m.DivisionNumber
			key.DivisionNumber = &division
		}
		markers = append(markers, &stockpile.Marker{Key: key, DesiredQuantity: m.DesiredQuantity})
	}
	return markers
}
