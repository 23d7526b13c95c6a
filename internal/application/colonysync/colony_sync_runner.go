package colonysync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/eve-pi-go/internal/application/common"
	"github.com/andrescamacho/eve-pi-go/internal/domain/character"
	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/pkg/utils"
)

// Planet outcome labels used in logs and metrics
const (
	OutcomeSynced    = "synced"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

// MetricsRecorder receives sync measurements. Implementations must be safe for
// concurrent use; a nil recorder disables metrics.
type MetricsRecorder interface {
	RecordPlanetSync(characterID int64, outcome string, duration time.Duration)
	RecordRun(duration time.Duration, synced, unchanged, failed int)
	RecordCharacterSynced(characterID int64, at time.Time)
}

// Config tunes the runner
type Config struct {
	Interval          time.Duration
	PlanetConcurrency int
	FetchTimeout      time.Duration
	RunOnStart        bool
}

// PlanetOutcome is the result of syncing one planet
type PlanetOutcome struct {
	CharacterID int64
	PlanetID    int64
	Outcome     string
	Duration    time.Duration
	Err         error
}

// RunReport summarizes one firing of the runner
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Characters int
	Synced     int
	Unchanged  int
	Failed     int
	Pruned     int
	Failures   []error
}

// Status is a point-in-time view of the runner for the control plane
type Status struct {
	Running    bool
	Interval   time.Duration
	LastReport *RunReport
	NextRunAt  time.Time
}

// ColonySyncRunner keeps the colony snapshot store fresh. Each firing refreshes every
// linked character; per character, planet detail fetches fan out with bounded
// concurrency and a failed planet keeps its previous snapshot.
type ColonySyncRunner struct {
	characters character.Repository
	provider   planetary.ColonyProvider
	colonies   planetary.ColonyRepository
	metrics    MetricsRecorder
	clock      shared.Clock
	cfg        Config

	trigger chan struct{}
	runMu   sync.Mutex

	statusMu sync.RWMutex
	status   Status
}

// NewColonySyncRunner creates a runner. If clock is nil, uses RealClock.
func NewColonySyncRunner(
	characters character.Repository,
	provider planetary.ColonyProvider,
	colonies planetary.ColonyRepository,
	metrics MetricsRecorder,
	clock shared.Clock,
	cfg Config,
) *ColonySyncRunner {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if cfg.PlanetConcurrency <= 0 {
		cfg.PlanetConcurrency = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	return &ColonySyncRunner{
		characters: characters,
		provider:   provider,
		colonies:   colonies,
		metrics:    metrics,
		clock:      clock,
		cfg:        cfg,
		trigger:    make(chan struct{}, 1),
		status:     Status{Interval: cfg.Interval},
	}
}

// Run starts the background sync loop and blocks until ctx is cancelled
func (r *ColonySyncRunner) Run(ctx context.Context) {
	logger := common.LoggerFromContext(ctx)
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	logger.Log(common.LevelInfo, "Colony sync runner started", map[string]interface{}{
		"interval":           r.cfg.Interval.String(),
		"planet_concurrency": r.cfg.PlanetConcurrency,
		"fetch_timeout":      r.cfg.FetchTimeout.String(),
	})

	r.setNextRun(r.clock.Now().Add(r.cfg.Interval))
	if r.cfg.RunOnStart {
		r.runLogged(ctx)
	}

	for {
		select {
		case <-ticker.C:
			r.runLogged(ctx)
			r.setNextRun(r.clock.Now().Add(r.cfg.Interval))
		case <-r.trigger:
			r.runLogged(ctx)
		case <-ctx.Done():
			logger.Log(common.LevelInfo, "Colony sync runner stopped", nil)
			return
		}
	}
}

// Trigger requests an immediate run. It never blocks; a pending request absorbs
// further triggers. Returns false when a request was already pending.
func (r *ColonySyncRunner) Trigger() bool {
	select {
	case r.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Status returns a copy of the runner status
func (r *ColonySyncRunner) Status() Status {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	status := r.status
	if status.LastReport != nil {
		report := *status.LastReport
		status.LastReport = &report
	}
	return status
}

func (r *ColonySyncRunner) runLogged(ctx context.Context) {
	if _, err := r.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		common.LoggerFromContext(ctx).Log(common.LevelError, "Colony sync run failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// RunOnce syncs every linked character once. Only failing to list characters is
// returned as an error; upstream and per-planet failures are logged and reported.
func (r *ColonySyncRunner) RunOnce(ctx context.Context) (*RunReport, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	report := &RunReport{RunID: utils.GenerateRunID("sync"), StartedAt: r.clock.Now()}
	r.setRunning(true)
	defer r.setRunning(false)

	logger := common.LoggerFromContext(ctx)
	characters, err := r.characters.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	report.Characters = len(characters)

	logger.Log(common.LevelInfo, "Colony sync run started", map[string]interface{}{
		"run_id":     report.RunID,
		"characters": len(characters),
	})

	for _, c := range characters {
		if ctx.Err() != nil {
			break
		}
		r.syncCharacter(ctx, report, c)
	}

	report.FinishedAt = r.clock.Now()
	duration := report.FinishedAt.Sub(report.StartedAt)
	if r.metrics != nil {
		r.metrics.RecordRun(duration, report.Synced, report.Unchanged, report.Failed)
	}

	logger.Log(common.LevelInfo, "Colony sync run finished", map[string]interface{}{
		"run_id":    report.RunID,
		"synced":    report.Synced,
		"unchanged": report.Unchanged,
		"failed":    report.Failed,
		"pruned":    report.Pruned,
		"duration":  duration.String(),
	})

	r.statusMu.Lock()
	r.status.LastReport = report
	r.statusMu.Unlock()
	return report, ctx.Err()
}

func (r *ColonySyncRunner) syncCharacter(ctx context.Context, report *RunReport, c *character.Character) {
	logger := common.LoggerFromContext(ctx)
	characterID := c.ID.Value()

	listCtx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	planets, err := r.provider.ListPlanets(listCtx, characterID, c.AccessToken)
	cancel()
	if err != nil {
		fetchErr := shared.NewUpstreamFetchError(characterID, 0, err)
		logger.Log(common.LevelWarning, "Planet list fetch failed, keeping existing snapshots", map[string]interface{}{
			"run_id":       report.RunID,
			"character_id": characterID,
			"error":        fetchErr.Error(),
		})
		report.Failures = append(report.Failures, fetchErr)
		return
	}

	keep := make([]int64, 0, len(planets))
	for _, p := range planets {
		keep = append(keep, p.PlanetID)
	}
	pruned, err := r.colonies.PruneMissing(ctx, characterID, keep)
	if err != nil {
		logger.Log(common.LevelWarning, "Failed to prune abandoned planets", map[string]interface{}{
			"run_id":       report.RunID,
			"character_id": characterID,
			"error":        err.Error(),
		})
	}
	report.Pruned += pruned

	results := make(chan PlanetOutcome)
	go func() {
		var g errgroup.Group
		g.SetLimit(r.cfg.PlanetConcurrency)
		for _, p := range planets {
			planet := p
			planet.OwnerID = characterID
			g.Go(func() error {
				results <- r.syncPlanet(ctx, c, planet)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	failed := 0
	for outcome := range results {
		if r.metrics != nil {
			r.metrics.RecordPlanetSync(characterID, outcome.Outcome, outcome.Duration)
		}
		metadata := map[string]interface{}{
			"run_id":       report.RunID,
			"character_id": characterID,
			"planet_id":    outcome.PlanetID,
			"outcome":      outcome.Outcome,
			"duration":     outcome.Duration.String(),
		}
		switch outcome.Outcome {
		case OutcomeSynced:
			report.Synced++
			logger.Log(common.LevelInfo, "Planet snapshot replaced", metadata)
		case OutcomeUnchanged:
			report.Unchanged++
			logger.Log(common.LevelDebug, "Planet snapshot unchanged", metadata)
		default:
			failed++
			report.Failed++
			report.Failures = append(report.Failures, outcome.Err)
			metadata["error"] = outcome.Err.Error()
			logger.Log(common.LevelWarning, "Planet sync failed, previous snapshot kept", metadata)
		}
	}

	if failed == 0 {
		now := r.clock.Now()
		if err := r.characters.MarkSynced(ctx, characterID, now); err != nil {
			logger.Log(common.LevelWarning, "Failed to record character sync time", map[string]interface{}{
				"character_id": characterID,
				"error":        err.Error(),
			})
		}
		if r.metrics != nil {
			r.metrics.RecordCharacterSynced(characterID, now)
		}
	}
}

type fetchResult struct {
	colony *planetary.Colony
	err    error
}

// syncPlanet fetches one colony under its own timeout and swaps it in atomically.
// Nothing is written unless the fetch and validation both succeed.
func (r *ColonySyncRunner) syncPlanet(ctx context.Context, c *character.Character, planet planetary.Planet) PlanetOutcome {
	start := r.clock.Now()
	outcome := PlanetOutcome{CharacterID: planet.OwnerID, PlanetID: planet.PlanetID}
	fail := func(err error) PlanetOutcome {
		outcome.Outcome = OutcomeFailed
		outcome.Err = err
		outcome.Duration = r.clock.Now().Sub(start)
		return outcome
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	defer cancel()

	// The provider may ignore cancellation; the select bounds the wait regardless
	done := make(chan fetchResult, 1)
	go func() {
		colony, err := r.provider.GetColonyDetail(fetchCtx, planet.OwnerID, planet.PlanetID, c.AccessToken)
		done <- fetchResult{colony: colony, err: err}
	}()

	var res fetchResult
	select {
	case res = <-done:
	case <-fetchCtx.Done():
		res.err = fetchCtx.Err()
	}
	if res.err == nil && res.colony == nil {
		res.err = errors.New("empty colony response")
	}
	if res.err != nil {
		return fail(shared.NewUpstreamFetchError(planet.OwnerID, planet.PlanetID, res.err))
	}
	if err := res.colony.Validate(); err != nil {
		return fail(shared.NewUpstreamFetchError(planet.OwnerID, planet.PlanetID, err))
	}

	fingerprint, err := planetary.Fingerprint(planet, *res.colony)
	if err != nil {
		return fail(fmt.Errorf("fingerprint planet %d: %w", planet.PlanetID, err))
	}
	planet.Fingerprint = fingerprint
	planet.SyncedAt = r.clock.Now()
	if planet.NumPins == 0 {
		planet.NumPins = len(res.colony.Pins)
	}

	changed, err := r.colonies.ReplaceColony(ctx, &planetary.PlanetSnapshot{Planet: planet, Colony: *res.colony})
	if err != nil {
		return fail(fmt.Errorf("replace colony %d: %w", planet.PlanetID, err))
	}

	outcome.Outcome = OutcomeUnchanged
	if changed {
		outcome.Outcome = OutcomeSynced
	}
	outcome.Duration = r.clock.Now().Sub(start)
	return outcome
}

func (r *ColonySyncRunner) setRunning(running bool) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.Running = running
}

func (r *ColonySyncRunner) setNextRun(at time.Time) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.NextRunAt = at
}
