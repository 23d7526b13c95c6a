package grpc

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/eve-pi-go/internal/application/colonysync"
)

// Runner status conversion helpers for the domain <-> protobuf boundary

// SyncStatus is the client-side view of the daemon's sync runner
type SyncStatus struct {
	Running   bool
	Interval  time.Duration
	NextRunAt time.Time
	LastRun   *SyncRunSummary
}

// SyncRunSummary summarizes the last completed sync run
type SyncRunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Characters int
	Synced     int
	Unchanged  int
	Failed     int
	Pruned     int
	Failures   []string
}

// TriggerResult reports whether a trigger request was queued
type TriggerResult struct {
	Accepted bool
	Pending  bool
}

// HealthStatus is the daemon health check answer
type HealthStatus struct {
	Status  string
	Version string
	Running bool
}

func statusToStruct(status colonysync.Status) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"running":          status.Running,
		"interval_seconds": status.Interval.Seconds(),
	}
	if !status.NextRunAt.IsZero() {
		fields["next_run_at"] = status.NextRunAt.UTC().Format(time.RFC3339)
	}
	if report := status.LastReport; report != nil {
		failures := make([]interface{}, 0, len(report.Failures))
		for _, f := range report.Failures {
			failures = append(failures, f.Error())
		}
		fields["last_run"] = map[string]interface{}{
			"run_id":      report.RunID,
			"started_at":  report.StartedAt.UTC().Format(time.RFC3339),
			"finished_at": report.FinishedAt.UTC().Format(time.RFC3339),
			"characters":  report.Characters,
			"synced":      report.Synced,
			"unchanged":   report.Unchanged,
			"failed":      report.Failed,
			"pruned":      report.Pruned,
			"failures":    failures,
		}
	}
	return structpb.NewStruct(fields)
}

func structToStatus(s *structpb.Struct) (*SyncStatus, error) {
	if s == nil {
		return nil, fmt.Errorf("empty status response")
	}
	fields := s.AsMap()
	status := &SyncStatus{
		Running:  boolField(fields, "running"),
		Interval: time.Duration(numberField(fields, "interval_seconds") * float64(time.Second)),
	}
	if raw, ok := fields["next_run_at"].(string); ok {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid next_run_at: %w", err)
		}
		status.NextRunAt = at
	}

	lastRun, ok := fields["last_run"].(map[string]interface{})
	if !ok {
		return status, nil
	}
	summary := &SyncRunSummary{
		RunID:      stringField(lastRun, "run_id"),
		Characters: int(numberField(lastRun, "characters")),
		Synced:     int(numberField(lastRun, "synced")),
		Unchanged:  int(numberField(lastRun, "unchanged")),
		Failed:     int(numberField(lastRun, "failed")),
		Pruned:     int(numberField(lastRun, "pruned")),
	}
	summary.StartedAt, _ = time.Parse(time.RFC3339, stringField(lastRun, "started_at"))
	summary.FinishedAt, _ = time.Parse(time.RFC3339, stringField(lastRun, "finished_at"))
	if failures, ok := lastRun["failures"].([]interface{}); ok {
		for _, f := range failures {
			if msg, ok := f.(string); ok {
				summary.Failures = append(summary.Failures, msg)
			}
		}
	}
	status.LastRun = summary
	return status, nil
}

func boolField(fields map[string]interface{}, key string) bool {
	v, _ := fields[key].(bool)
	return v
}

func numberField(fields map[string]interface{}, key string) float64 {
	v, _ := fields[key].(float64)
	return v
}

func stringField(fields map[string]interface{}, key string) string {
	v, _ := fields[key].(string)
	return v
}
