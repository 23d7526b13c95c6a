package stockpile

import "context"

// MarkerRepository persists stockpile markers keyed by MarkerKey.
// List methods return markers in a stable key order so allocation is deterministic.
type MarkerRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]*Marker, error)
	ListByType(ctx context.Context, userID int64, typeID int32) ([]*Marker, error)
	Upsert(ctx context.Context, marker *Marker) error
	Delete(ctx context.Context, key MarkerKey) error
}
