package character

import (
	"time"

	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
)

// Character is an EVE character linked to a user account whose colonies are synced
type Character struct {
	ID           shared.CharacterID
	Name         string
	UserID       int64
	AccessToken  string
	CreatedAt    time.Time
	LastSyncedAt *time.Time
}

// NewCharacter creates a new linked character
func NewCharacter(id int64, name string, userID int64, token string) (*Character, error) {
	characterID, err := shared.NewCharacterID(id)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "must not be empty")
	}
	if userID <= 0 {
		return nil, shared.NewValidationError("user_id", "must be positive")
	}
	return &Character{
		ID:          characterID,
		Name:        name,
		UserID:      userID,
		AccessToken: token,
	}, nil
}
