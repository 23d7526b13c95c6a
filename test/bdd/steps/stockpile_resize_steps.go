package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/eve-pi-go/internal/application/stockpile/commands"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
	"github.com/andrescamacho/eve-pi-go/test/helpers"
)

const fixtureOwnerID int64 = 90000001

type stockpileResizeContext struct {
	markers  *helpers.InMemoryMarkerRepository
	handler  *commands.ResizeStockpileHandler
	response *commands.ResizeStockpileResponse
	err      error
}

func (sc *stockpileResizeContext) reset() {
	sc.markers = helpers.NewInMemoryMarkerRepository()
	sc.handler = commands.NewResizeStockpileHandler(sc.markers, nil)
	sc.response = nil
	sc.err = nil
}

func (sc *stockpileResizeContext) userHasMarkersForTypeAtLocationsWanting(userID int64, typeID int32, locations, quantities string) error {
	locationIDs, desired, err := parsePairedLists(locations, quantities)
	if err != nil {
		return err
	}
	for i, locationID := range locationIDs {
		marker, err := stockpile.NewMarker(stockpile.MarkerKey{
			UserID:     userID,
			TypeID:     typeID,
			OwnerType:  stockpile.OwnerCharacter,
			OwnerID:    fixtureOwnerID,
			LocationID: locationID,
		}, desired[i])
		if err != nil {
			return err
		}
		sc.markers.Seed(marker)
	}
	return nil
}

func (sc *stockpileResizeContext) writesToLocationFail(locationID int64) error {
	sc.markers.FailUpsertAt(locationID, errors.New("database is locked"))
	return nil
}

func (sc *stockpileResizeContext) userResizesTypeTo(userID int64, typeID int32, total int64) error {
	resp, err := sc.handler.Handle(context.Background(), &commands.ResizeStockpileCommand{
		UserID:           userID,
		TypeID:           typeID,
		NewTotalQuantity: total,
	})
	sc.err = err
	if err == nil {
		sc.response = resp.(*commands.ResizeStockpileResponse)
	}
	return nil
}

func (sc *stockpileResizeContext) theMarkersForTypeAtLocationsShouldWant(typeID int32, locations, quantities string) error {
	locationIDs, expected, err := parsePairedLists(locations, quantities)
	if err != nil {
		return err
	}
	for i, locationID := range locationIDs {
		if got := sc.markers.Desired(typeID, locationID); got != expected[i] {
			return fmt.Errorf("marker for type %d at location %d: expected %d, got %d", typeID, locationID, expected[i], got)
		}
	}
	return nil
}

func (sc *stockpileResizeContext) markersShouldHaveBeenUpdated(count int) error {
	if sc.err != nil {
		return fmt.Errorf("resize failed: %w", sc.err)
	}
	if got := len(sc.response.UpdatedMarkers); got != count {
		return fmt.Errorf("expected %d updated markers, got %d", count, got)
	}
	return nil
}

func (sc *stockpileResizeContext) theResizeShouldReportAPartialFailureForMarker(count int) error {
	if sc.err != nil {
		return fmt.Errorf("resize failed outright: %w", sc.err)
	}
	var partial *stockpile.PartialRebalanceFailure
	if !errors.As(sc.response.Err(), &partial) {
		return fmt.Errorf("expected a partial rebalance failure, got %v", sc.response.Err())
	}
	if len(partial.Failures) != count {
		return fmt.Errorf("expected %d failed markers, got %d", count, len(partial.Failures))
	}
	return nil
}

func (sc *stockpileResizeContext) theResizeShouldFailWithAValidationError() error {
	var validationErr *shared.ValidationError
	if !errors.As(sc.err, &validationErr) {
		return fmt.Errorf("expected a validation error, got %v", sc.err)
	}
	return nil
}

// InitializeStockpileResizeScenario registers stockpile resize steps
func InitializeStockpileResizeScenario(ctx *godog.ScenarioContext) {
	sc := &stockpileResizeContext{}

	ctx.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		sc.reset()
		return ctx, nil
	})

	ctx.Step(`^user (\d+) has markers for type (\d+) at locations "([^"]*)" wanting "([^"]*)"$`, sc.userHasMarkersForTypeAtLocationsWanting)
	ctx.Step(`^writes to location (\d+) fail$`, sc.writesToLocationFail)

	ctx.Step(`^user (\d+) resizes type (\d+) to (-?\d+)$`, sc.userResizesTypeTo)

	ctx.Step(`^the markers for type (\d+) at locations "([^"]*)" should want "([^"]*)"$`, sc.theMarkersForTypeAtLocationsShouldWant)
	ctx.Step(`^(\d+) markers should have been updated$`, sc.markersShouldHaveBeenUpdated)
	ctx.Step(`^the resize should report a partial failure for (\d+) markers?$`, sc.theResizeShouldReportAPartialFailureForMarker)
	ctx.Step(`^the resize should fail with a validation error$`, sc.theResizeShouldFailWithAValidationError)
}
