package character

import (
	"context"
	"time"
)

// Repository defines linked character persistence operations
type Repository interface {
	FindByID(ctx context.Context, characterID int64) (*Character, error)
	ListAll(ctx context.Context) ([]*Character, error)
	ListByUser(ctx context.Context, userID int64) ([]*Character, error)
	Add(ctx context.Context, character *Character) error
	MarkSynced(ctx context.Context, characterID int64, at time.Time) error
}
