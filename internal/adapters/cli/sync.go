package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	daemongrpc "github.com/andrescamacho/eve-pi-go/internal/adapters/grpc"
	"github.com/andrescamacho/eve-pi-go/internal/adapters/persistence"
)

// NewSyncCommand creates the sync command with subcommands
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Control and inspect colony sync",
		Long: `Talk to pi-daemon over its Unix socket and read persisted sync logs.

Examples:
  pi sync now
  pi sync status
  pi sync logs --level WARNING --since 2h`,
	}

	cmd.AddCommand(newSyncNowCommand())
	cmd.AddCommand(newSyncStatusCommand())
	cmd.AddCommand(newSyncLogsCommand())

	return cmd
}

func newSyncNowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "now",
		Short: "Ask the daemon to run a sync immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := daemongrpc.NewDaemonClientGRPC(resolveSocketPath())
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			result, err := client.TriggerSync(ctx)
			if err != nil {
				return fmt.Errorf("failed to trigger sync: %w", err)
			}
			if result.Pending {
				fmt.Println("✓ A sync is already queued")
				return nil
			}
			fmt.Println("✓ Sync triggered")
			fmt.Println("\nFollow progress with: pi sync status")
			return nil
		},
	}

	return cmd
}

func newSyncStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the daemon's sync state and last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := daemongrpc.NewDaemonClientGRPC(resolveSocketPath())
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			status, err := client.GetSyncStatus(ctx)
			if err != nil {
				return fmt.Errorf("failed to get sync status: %w", err)
			}

			state := "idle"
			if status.Running {
				state = "running"
			}
			fmt.Printf("State:     %s\n", state)
			fmt.Printf("Interval:  %s\n", status.Interval)
			if !status.NextRunAt.IsZero() {
				fmt.Printf("Next run:  %s\n", status.NextRunAt.Local().Format(time.DateTime))
			}

			run := status.LastRun
			if run == nil {
				fmt.Println("\nNo sync has completed yet")
				return nil
			}
			fmt.Printf("\nLast run %s\n", run.RunID)
			fmt.Printf("  Finished:   %s (%s)\n",
				run.FinishedAt.Local().Format(time.DateTime), run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
			fmt.Printf("  Characters: %d\n", run.Characters)
			fmt.Printf("  Planets:    %d synced, %d unchanged, %d failed, %d pruned\n",
				run.Synced, run.Unchanged, run.Failed, run.Pruned)
			for _, failure := range run.Failures {
				fmt.Printf("  ✗ %s\n", failure)
			}
			return nil
		},
	}

	return cmd
}

func newSyncLogsCommand() *cobra.Command {
	var (
		runID       string
		characterID int64
		level       string
		limit       int
		since       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show persisted sync logs",
		Long: `Show sync run logs written by pi-daemon when logging.persist_sync_logs is on.

Examples:
  pi sync logs
  pi sync logs --run 3f2a... --level ERROR
  pi sync logs --character 90000001 --since 24h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			filter := persistence.SyncLogFilter{
				RunID:       runID,
				CharacterID: characterID,
				Level:       strings.ToUpper(level),
				Limit:       limit,
			}
			if since > 0 {
				from := time.Now().Add(-since)
				filter.Since = &from
			}

			entries, err := a.syncLogs.GetLogs(a.context(), filter)
			if err != nil {
				return fmt.Errorf("failed to get sync logs: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("No sync logs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tLEVEL\tCHARACTER\tMESSAGE")
			for _, entry := range entries {
				character := "-"
				if entry.CharacterID != 0 {
					character = fmt.Sprintf("%d", entry.CharacterID)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s%s\n",
					entry.Timestamp.Local().Format(time.DateTime), entry.Level, character,
					entry.Message, formatMetadata(entry.Metadata))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Only this sync run")
	cmd.Flags().Int64Var(&characterID, "character", 0, "Only this character")
	cmd.Flags().StringVar(&level, "level", "", "Only this level (DEBUG, INFO, WARNING, ERROR)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum entries")
	cmd.Flags().DurationVar(&since, "since", 0, "Only entries newer than this (e.g. 2h)")

	return cmd
}

// formatMetadata renders metadata as sorted key=value pairs
func formatMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	return b.String()
}
