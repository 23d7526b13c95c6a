package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/eve-pi-go/internal/application/stockpile/commands"
	"github.com/andrescamacho/eve-pi-go/internal/application/stockpile/queries"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
)

// markerFlags holds the flags that identify one marker
type markerFlags struct {
	typeID      int32
	ownerType   string
	ownerID     int64
	locationID  int64
	containerID int64
	division    int
}

func (f *markerFlags) bind(cmd *cobra.Command) {
	cmd.Flags().Int32Var(&f.typeID, "type", 0, "Material type ID (required)")
	cmd.Flags().StringVar(&f.ownerType, "owner-type", string(stockpile.OwnerCharacter), "Owner type: character or corporation")
	cmd.Flags().Int64Var(&f.ownerID, "owner", 0, "Owner ID (required)")
	cmd.Flags().Int64Var(&f.locationID, "location", 0, "Location ID (required)")
	cmd.Flags().Int64Var(&f.containerID, "container", 0, "Container item ID")
	cmd.Flags().IntVar(&f.division, "division", 0, "Corporation hangar division (1-7)")
}

func (f *markerFlags) key(cmd *cobra.Command, user int64) (stockpile.MarkerKey, error) {
	if f.typeID <= 0 || f.ownerID <= 0 || f.locationID <= 0 {
		return stockpile.MarkerKey{}, fmt.Errorf("--type, --owner and --location flags are required")
	}
	ownerType, err := stockpile.ParseOwnerType(f.ownerType)
	if err != nil {
		return stockpile.MarkerKey{}, err
	}

	key := stockpile.MarkerKey{
		UserID:     user,
		TypeID:     f.typeID,
		OwnerType:  ownerType,
		OwnerID:    f.ownerID,
		LocationID: f.locationID,
	}
	if cmd.Flags().Changed("container") {
		container := f.containerID
		key.ContainerID = &container
	}
	if cmd.Flags().Changed("division") {
		division := f.division
		key.DivisionNumber = &division
	}
	return key, nil
}

// NewStockpileCommand creates the stockpile command with subcommands
func NewStockpileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stockpile",
		Short: "Manage stockpile markers and targets",
		Long: `Manage stockpile markers: desired quantities of a material at a location.

Examples:
  pi stockpile list
  pi stockpile set --type 2398 --owner 90000001 --location 60003760 --quantity 5000
  pi stockpile resize --type 2398 --total 12000
  pi stockpile resize-all --preset 1w`,
	}

	cmd.AddCommand(newStockpileListCommand())
	cmd.AddCommand(newStockpileSetCommand())
	cmd.AddCommand(newStockpileDeleteCommand())
	cmd.AddCommand(newStockpileResizeCommand())
	cmd.AddCommand(newStockpileResizeAllCommand())

	return cmd
}

func newStockpileListCommand() *cobra.Command {
	var typeID int32

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stockpile markers",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := resolveUserID()
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			response, err := a.mediator.Send(a.context(), &queries.ListMarkersQuery{UserID: user, TypeID: typeID})
			if err != nil {
				return err
			}
			result := response.(*queries.ListMarkersResponse)
			if len(result.Markers) == 0 {
				fmt.Println("No stockpile markers")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tOWNER\tLOCATION\tCONTAINER\tDIVISION\tDESIRED")
			for _, m := range result.Markers {
				container, division := "-", "-"
				if m.Key.ContainerID != nil {
					container = fmt.Sprintf("%d", *m.Key.ContainerID)
				}
				if m.Key.DivisionNumber != nil {
					division = fmt.Sprintf("%d", *m.Key.DivisionNumber)
				}
				fmt.Fprintf(w, "%d\t%s:%d\t%d\t%s\t%s\t%d\n",
					m.Key.TypeID, m.Key.OwnerType, m.Key.OwnerID, m.Key.LocationID,
					container, division, m.DesiredQuantity)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\nTotal desired: %d\n", result.TotalDesired)
			return nil
		},
	}

	cmd.Flags().Int32Var(&typeID, "type", 0, "Only markers of this material")

	return cmd
}

func newStockpileSetCommand() *cobra.Command {
	var (
		flags    markerFlags
		quantity int64
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update a stockpile marker",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := resolveUserID()
			if err != nil {
				return err
			}
			key, err := flags.key(cmd, user)
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.mediator.Send(a.context(), &commands.UpsertMarkerCommand{Key: key, DesiredQuantity: quantity}); err != nil {
				return err
			}
			fmt.Printf("✓ Marker saved: %s desired=%d\n", key, quantity)
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().Int64Var(&quantity, "quantity", 0, "Desired quantity")

	return cmd
}

func newStockpileDeleteCommand() *cobra.Command {
	var flags markerFlags

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a stockpile marker",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := resolveUserID()
			if err != nil {
				return err
			}
			key, err := flags.key(cmd, user)
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.mediator.Send(a.context(), &commands.DeleteMarkerCommand{Key: key}); err != nil {
				return err
			}
			fmt.Printf("✓ Marker deleted: %s\n", key)
			return nil
		},
	}

	flags.bind(cmd)

	return cmd
}

func newStockpileResizeCommand() *cobra.Command {
	var (
		typeID int32
		total  int64
	)

	cmd := &cobra.Command{
		Use:   "resize",
		Short: "Set a material's total target and spread it over its markers",
		Long: `Spread a new total desired quantity over a material's markers in proportion to
their current targets. Markers with no target share the total equally.

Example:
  pi stockpile resize --type 2398 --total 12000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if typeID <= 0 {
				return fmt.Errorf("--type flag is required")
			}
			user, err := resolveUserID()
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			response, err := a.mediator.Send(a.context(), &commands.ResizeStockpileCommand{
				UserID:           user,
				TypeID:           typeID,
				NewTotalQuantity: total,
			})
			if err != nil {
				return err
			}
			result := response.(*commands.ResizeStockpileResponse)

			fmt.Printf("✓ Updated %d marker(s)\n", len(result.UpdatedMarkers))
			for _, m := range result.UpdatedMarkers {
				fmt.Printf("  location %d: %d\n", m.Key.LocationID, m.DesiredQuantity)
			}
			return reportFailures(result.Err())
		},
	}

	cmd.Flags().Int32Var(&typeID, "type", 0, "Material type ID (required)")
	cmd.Flags().Int64Var(&total, "total", 0, "New total desired quantity")

	return cmd
}

func newStockpileResizeAllCommand() *cobra.Command {
	var (
		hours  float64
		preset string
	)

	cmd := &cobra.Command{
		Use:   "resize-all",
		Short: "Size every consumed material's stockpile for a coverage duration",
		Long: `Set each consumed material's total target to consumption per hour times the
coverage duration, rounded up, and spread it over the material's markers.

Presets: 1d, 3d, 1w, 2w, 30d

Examples:
  pi stockpile resize-all --preset 1w
  pi stockpile resize-all --hours 36`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if hours <= 0 && preset == "" {
				return fmt.Errorf("either --hours or --preset flag is required")
			}
			user, err := resolveUserID()
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			response, err := a.mediator.Send(a.context(), &commands.ResizeAllStockpilesCommand{
				UserID:        user,
				CoverageHours: hours,
				Preset:        preset,
			})
			if err != nil {
				return err
			}
			result := response.(*commands.ResizeAllStockpilesResponse)

			if len(result.Materials) == 0 {
				fmt.Println("No consumed materials with stockpile markers")
				return nil
			}
			fmt.Printf("Coverage: %.1f hours\n\n", result.CoverageHours)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MATERIAL\tCONSUMED/H\tTARGET\tUPDATED\tFAILED")
			for _, m := range result.Materials {
				fmt.Fprintf(w, "%s\t%.1f\t%d\t%d\t%d\n", m.Name, m.ConsumedPerHour, m.Target, m.Updated, m.Failed)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\n✓ Updated %d marker(s)\n", result.UpdatedCount)

			if len(result.Failures) > 0 {
				errs := make([]error, 0, len(result.Failures))
				for _, f := range result.Failures {
					errs = append(errs, fmt.Errorf("%s: %w", f.Key, f.Err))
				}
				return reportFailures(errors.Join(errs...))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&hours, "hours", 0, "Coverage in hours")
	cmd.Flags().StringVar(&preset, "preset", "", "Coverage preset (1d, 3d, 1w, 2w, 30d)")

	return cmd
}

// reportFailures prints per-marker failures and returns a short error for the exit code
func reportFailures(err error) error {
	if err == nil {
		return nil
	}
	fmt.Fprintf(os.Stderr, "\nSome markers could not be written:\n%v\n", err)
	return fmt.Errorf("stockpile update partially failed")
}
