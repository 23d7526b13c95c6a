package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/eve-pi-go/internal/adapters/persistence"
	"github.com/andrescamacho/eve-pi-go/internal/application/colonysync"
	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/test/helpers"
)

var syncEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type colonySyncContext struct {
	clock       *shared.MockClock
	characters  *helpers.MockCharacterRepository
	provider    *helpers.MockColonyProvider
	colonies    *persistence.GormColonyRepository
	runner      *colonysync.ColonySyncRunner
	characterID int64
	planetIDs   []int64
	lastSynced  *time.Time
	report      *colonysync.RunReport
	err         error
}

func (cc *colonySyncContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	cc.clock = shared.NewMockClock(syncEpoch)
	cc.characters = helpers.NewMockCharacterRepository()
	cc.provider = helpers.NewMockColonyProvider()
	cc.colonies = persistence.NewGormColonyRepository(helpers.SharedTestDB)
	cc.runner = colonysync.NewColonySyncRunner(cc.characters, cc.provider, cc.colonies, nil, cc.clock, colonysync.Config{
		Interval:          time.Hour,
		PlanetConcurrency: 2,
		FetchTimeout:      time.Second,
	})
	cc.characterID = 0
	cc.planetIDs = nil
	cc.lastSynced = nil
	cc.report = nil
	cc.err = nil
	return nil
}

func (cc *colonySyncContext) characterNamedIsLinkedToUser(characterID int64, name string, userID int64) error {
	cc.characters.AddCharacter(characterID, name, userID)
	cc.characterID = characterID
	return nil
}

func (cc *colonySyncContext) theCharacterOwnsPlanetsUpstream(planets string) error {
	planetIDs, err := parseInt64List(planets)
	if err != nil {
		return err
	}
	for _, planetID := range planetIDs {
		cc.provider.AddColony(
			cc.characterID,
			helpers.SamplePlanet(cc.characterID, planetID, syncEpoch.Add(-time.Hour)),
			helpers.SampleColony(syncEpoch.Add(48*time.Hour)),
		)
	}
	cc.planetIDs = planetIDs
	return nil
}

func (cc *colonySyncContext) aSyncRunCompletes() error {
	cc.clock.Advance(time.Minute)
	cc.report, cc.err = cc.runner.RunOnce(context.Background())
	if cc.err != nil {
		return fmt.Errorf("sync run failed: %w", cc.err)
	}
	return nil
}

func (cc *colonySyncContext) aSyncRunHasCompleted() error {
	if err := cc.aSyncRunCompletes(); err != nil {
		return err
	}
	cc.lastSynced = cc.characters.LastSyncedAt(cc.characterID)
	return nil
}

func (cc *colonySyncContext) upstreamLaunchpadStockOnEveryPlanetChangesTo(amount int64) error {
	colony := helpers.SampleColony(syncEpoch.Add(48 * time.Hour))
	for i := range colony.Pins {
		if colony.Pins[i].PinID == helpers.SampleLaunchpadPin {
			colony.Pins[i].Contents = []planetary.PinContent{{TypeID: helpers.ReactiveMtlTypeID, Amount: amount}}
		}
	}
	for _, planetID := range cc.planetIDs {
		cc.provider.UpdateColony(planetID, colony)
	}
	return nil
}

func (cc *colonySyncContext) upstreamFetchesForPlanetFail(planetID int64) error {
	cc.provider.FailPlanet(planetID, errors.New("502 bad gateway"))
	return nil
}

func (cc *colonySyncContext) theCharacterAbandonsPlanetUpstream(planetID int64) error {
	cc.provider.RemovePlanet(cc.characterID, planetID)
	return nil
}

func (cc *colonySyncContext) planetsShouldBe(count int, state string) error {
	var got int
	switch state {
	case "synced":
		got = cc.report.Synced
	case "unchanged":
		got = cc.report.Unchanged
	case "pruned":
		got = cc.report.Pruned
	default:
		return fmt.Errorf("unknown planet state %q", state)
	}
	if got != count {
		return fmt.Errorf("expected %d planets %s, got %d", count, state, got)
	}
	return nil
}

func (cc *colonySyncContext) planetsShouldHaveFailed(count int) error {
	if cc.report.Failed != count {
		return fmt.Errorf("expected %d failed planets, got %d (%v)", count, cc.report.Failed, cc.report.Failures)
	}
	return nil
}

func (cc *colonySyncContext) snapshotsShouldBeStoredForPlanets(planets string) error {
	expected, err := parseInt64List(planets)
	if err != nil {
		return err
	}
	snapshots, err := cc.colonies.FindByCharacters(context.Background(), []int64{cc.characterID})
	if err != nil {
		return err
	}
	if len(snapshots) != len(expected) {
		return fmt.Errorf("expected %d stored snapshots, got %d", len(expected), len(snapshots))
	}
	stored := make(map[int64]bool, len(snapshots))
	for _, s := range snapshots {
		stored[s.Planet.PlanetID] = true
	}
	for _, planetID := range expected {
		if !stored[planetID] {
			return fmt.Errorf("no snapshot stored for planet %d", planetID)
		}
	}
	return nil
}

func (cc *colonySyncContext) theStoredLaunchpadStockOnPlanetShouldBe(planetID, expected int64) error {
	snapshot, err := cc.colonies.FindOne(context.Background(), cc.characterID, planetID)
	if err != nil {
		return err
	}
	for _, pin := range snapshot.Colony.Pins {
		if pin.PinID != helpers.SampleLaunchpadPin {
			continue
		}
		var amount int64
		for _, c := range pin.Contents {
			amount += c.Amount
		}
		if amount != expected {
			return fmt.Errorf("expected launchpad stock %d on planet %d, got %d", expected, planetID, amount)
		}
		return nil
	}
	return fmt.Errorf("launchpad pin missing from snapshot of planet %d", planetID)
}

func (cc *colonySyncContext) theCharacterShouldBeMarkedAsSynced() error {
	at := cc.characters.LastSyncedAt(cc.characterID)
	if at == nil {
		return fmt.Errorf("character %d was not marked as synced", cc.characterID)
	}
	if !at.Equal(cc.clock.Now()) {
		return fmt.Errorf("expected sync time %s, got %s", cc.clock.Now(), at)
	}
	return nil
}

func (cc *colonySyncContext) theCharactersLastSyncTimeShouldNotAdvance() error {
	at := cc.characters.LastSyncedAt(cc.characterID)
	if cc.lastSynced == nil || at == nil {
		return fmt.Errorf("expected a recorded sync time, got %v", at)
	}
	if !at.Equal(*cc.lastSynced) {
		return fmt.Errorf("sync time advanced from %s to %s", cc.lastSynced, at)
	}
	return nil
}

// InitializeColonySyncScenario registers colony sync steps backed by the shared test database
func InitializeColonySyncScenario(ctx *godog.ScenarioContext) {
	cc := &colonySyncContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, cc.reset()
	})

	// Given steps
	ctx.Step(`^character (\d+) named "([^"]*)" is linked to user (\d+)$`, cc.characterNamedIsLinkedToUser)
	ctx.Step(`^the character owns planets "([^"]*)" upstream$`, cc.theCharacterOwnsPlanetsUpstream)
	ctx.Step(`^a sync run has completed$`, cc.aSyncRunHasCompleted)
	ctx.Step(`^upstream launchpad stock on every planet changes to (\d+)$`, cc.upstreamLaunchpadStockOnEveryPlanetChangesTo)
	ctx.Step(`^upstream fetches for planet (\d+) fail$`, cc.upstreamFetchesForPlanetFail)
	ctx.Step(`^the character abandons planet (\d+) upstream$`, cc.theCharacterAbandonsPlanetUpstream)

	// When steps
	ctx.Step(`^a sync run completes$`, cc.aSyncRunCompletes)

	// Then steps
	ctx.Step(`^(\d+) planets should be (synced|unchanged|pruned)$`, cc.planetsShouldBe)
	ctx.Step(`^(\d+) planets should have failed$`, cc.planetsShouldHaveFailed)
	ctx.Step(`^snapshots should be stored for planets "([^"]*)"$`, cc.snapshotsShouldBeStoredForPlanets)
	ctx.Step(`^the stored launchpad stock on planet (\d+) should be (\d+)$`, cc.theStoredLaunchpadStockOnPlanetShouldBe)
	ctx.Step(`^the character should be marked as synced$`, cc.theCharacterShouldBeMarkedAsSynced)
	ctx.Step(`^the character's last sync time should not advance$`, cc.theCharactersLastSyncTimeShouldNotAdvance)
}
