package helpers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
)

// InMemoryMarkerRepository is a stockpile.MarkerRepository whose writes can be made
// to fail for chosen locations
type InMemoryMarkerRepository struct {
	mu           sync.Mutex
	markers      map[string]*stockpile.Marker
	failLocation map[int64]error
	ListErr      error
	Upserts      int
}

// NewInMemoryMarkerRepository creates an empty repository
func NewInMemoryMarkerRepository() *InMemoryMarkerRepository {
	return &InMemoryMarkerRepository{
		markers:      make(map[string]*stockpile.Marker),
		failLocation: make(map[int64]error),
	}
}

// Seed stores markers without counting them as upserts
func (r *InMemoryMarkerRepository) Seed(markers ...*stockpile.Marker) *InMemoryMarkerRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range markers {
		copy := *m
		r.markers[m.Key.String()] = &copy
	}
	return r
}

// FailUpsertAt makes every upsert of a marker at locationID return err
func (r *InMemoryMarkerRepository) FailUpsertAt(locationID int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failLocation[locationID] = err
}

func (r *InMemoryMarkerRepository) ListByUser(ctx context.Context, userID int64) ([]*stockpile.Marker, error) {
	return r.list(func(m *stockpile.Marker) bool { return m.Key.UserID == userID })
}

func (r *InMemoryMarkerRepository) ListByType(ctx context.Context, userID int64, typeID int32) ([]*stockpile.Marker, error) {
	return r.list(func(m *stockpile.Marker) bool { return m.Key.UserID == userID && m.Key.TypeID == typeID })
}

func (r *InMemoryMarkerRepository) list(keep func(*stockpile.Marker) bool) ([]*stockpile.Marker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	out := []*stockpile.Marker{}
	for _, m := range r.markers {
		if keep(m) {
			copy := *m
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if a.TypeID != b.TypeID {
			return a.TypeID < b.TypeID
		}
		if a.OwnerID != b.OwnerID {
			return a.OwnerID < b.OwnerID
		}
		return a.LocationID < b.LocationID
	})
	return out, nil
}

func (r *InMemoryMarkerRepository) Upsert(ctx context.Context, marker *stockpile.Marker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failLocation[marker.Key.LocationID]; err != nil {
		return err
	}
	r.Upserts++
	copy := *marker
	r.markers[marker.Key.String()] = &copy
	return nil
}

func (r *InMemoryMarkerRepository) Delete(ctx context.Context, key stockpile.MarkerKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.markers[key.String()]; !ok {
		return fmt.Errorf("%s: %w", key, shared.ErrMarkerNotFound)
	}
	delete(r.markers, key.String())
	return nil
}

// Desired returns the stored desired quantity at a location for a type, -1 if absent
func (r *InMemoryMarkerRepository) Desired(typeID int32, locationID int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.markers {
		if m.Key.TypeID == typeID && m.Key.LocationID == locationID {
			return m.DesiredQuantity
		}
	}
	return -1
}
