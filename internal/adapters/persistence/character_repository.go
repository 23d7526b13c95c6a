package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/eve-pi-go/internal/domain/character"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
)

// GormCharacterRepository implements character.Repository using GORM
type GormCharacterRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormCharacterRepository creates a new GORM character repository.
// If clock is nil, uses RealClock.
func NewGormCharacterRepository(db *gorm.DB, clock shared.Clock) *GormCharacterRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormCharacterRepository{db: db, clock: clock}
}

// FindByID retrieves a character by ID
func (r *GormCharacterRepository) FindByID(ctx context.Context, characterID int64) (*character.Character, error) {
	var model CharacterModel
	result := r.db.WithContext(ctx).Where("id = ?", characterID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("character %d: %w", characterID, shared.ErrCharacterNotFound)
		}
		return nil, fmt.Errorf("failed to find character: %w", result.Error)
	}

	return r.modelToCharacter(&model)
}

// ListAll retrieves every linked character
func (r *GormCharacterRepository) ListAll(ctx context.Context) ([]*character.Character, error) {
	var models []CharacterModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return r.modelsToCharacters(models), nil
}

// ListByUser retrieves the characters linked to one user
func (r *GormCharacterRepository) ListByUser(ctx context.Context, userID int64) ([]*character.Character, error) {
	var models []CharacterModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return r.modelsToCharacters(models), nil
}

// Add links a character, refreshing name, owner and token when it already exists
func (r *GormCharacterRepository) Add(ctx context.Context, c *character.Character) error {
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.clock.Now()
		c.CreatedAt = createdAt
	}
	model := &CharacterModel{
		ID:           c.ID.Value(),
		Name:         c.Name,
		UserID:       c.UserID,
		AccessToken:  c.AccessToken,
		CreatedAt:    createdAt,
		LastSyncedAt: c.LastSyncedAt,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "user_id", "access_token"}),
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to add character: %w", result.Error)
	}
	return nil
}

// MarkSynced records the last time every planet of the character synced cleanly
func (r *GormCharacterRepository) MarkSynced(ctx context.Context, characterID int64, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&CharacterModel{}).
		Where("id = ?", characterID).
		Update("last_synced_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to mark character synced: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("character %d: %w", characterID, shared.ErrCharacterNotFound)
	}
	return nil
}

func (r *GormCharacterRepository) modelsToCharacters(models []CharacterModel) []*character.Character {
	characters := make([]*character.Character, 0, len(models))
	for i := range models {
		c, err := r.modelToCharacter(&models[i])
		if err != nil {
			continue // Skip invalid rows
		}
		characters = append(characters, c)
	}
	return characters
}

func (r *GormCharacterRepository) modelToCharacter(model *CharacterModel) (*character.Character, error) {
	id, err := shared.NewCharacterID(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid character ID in database: %w", err)
	}
	return &character.Character{
		ID:           id,
		Name:         model.Name,
		UserID:       model.UserID,
		AccessToken:  model.AccessToken,
		CreatedAt:    model.CreatedAt,
		LastSyncedAt: model.LastSyncedAt,
	}, nil
}
