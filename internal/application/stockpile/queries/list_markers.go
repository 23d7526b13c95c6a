package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/eve-pi-go/internal/application/common"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
)

// ListMarkersQuery lists a user's stockpile markers, optionally for one type only
type ListMarkersQuery struct {
	UserID int64
	TypeID int32
}

// ListMarkersResponse holds markers in stable key order
type ListMarkersResponse struct {
	Markers      []*stockpile.Marker
	TotalDesired int64
}

// ListMarkersHandler handles the ListMarkers query
type ListMarkersHandler struct {
	markers stockpile.MarkerRepository
}

// NewListMarkersHandler creates a new ListMarkersHandler
func NewListMarkersHandler(markers stockpile.MarkerRepository) *ListMarkersHandler {
	return &ListMarkersHandler{markers: markers}
}

// Handle executes the ListMarkers query
func (h *ListMarkersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListMarkersQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListMarkersQuery")
	}
	if query.UserID <= 0 {
		return nil, shared.NewValidationError("user_id", "must be positive")
	}

	var (
		markers []*stockpile.Marker
		err     error
	)
	if query.TypeID != 0 {
		markers, err = h.markers.ListByType(ctx, query.UserID, query.TypeID)
	} else {
		markers, err = h.markers.ListByUser(ctx, query.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list markers: %w", err)
	}

	return &ListMarkersResponse{
		Markers:      markers,
		TotalDesired: stockpile.TotalDesired(markers),
	}, nil
}
