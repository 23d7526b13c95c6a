package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/eve-pi-go/internal/application/supplychain/queries"
	"github.com/andrescamacho/eve-pi-go/internal/domain/supplychain"
)

// itemJSON is the --json shape of one supply chain item
type itemJSON struct {
	TypeID          int32             `json:"type_id"`
	Name            string            `json:"name"`
	Tier            string            `json:"tier"`
	Source          string            `json:"source"`
	ProducedPerHour float64           `json:"produced_per_hour"`
	ConsumedPerHour float64           `json:"consumed_per_hour"`
	NetPerHour      float64           `json:"net_per_hour"`
	CurrentStock    int64             `json:"current_stock"`
	StockpileQty    int64             `json:"stockpile_qty"`
	DepletionHours  *float64          `json:"depletion_hours"`
	Producers       []contributorJSON `json:"producers"`
	Consumers       []contributorJSON `json:"consumers"`
}

type contributorJSON struct {
	CharacterID     int64   `json:"character_id"`
	CharacterName   string  `json:"character_name"`
	PlanetID        int64   `json:"planet_id"`
	PlanetType      string  `json:"planet_type"`
	SolarSystemName string  `json:"solar_system_name"`
	RatePerHour     float64 `json:"rate_per_hour"`
}

// NewSupplyChainCommand creates the supply-chain command
func NewSupplyChainCommand() *cobra.Command {
	var (
		characterID int64
		planetID    int64
		launchpadID int64
		asJSON      bool
		asTree      bool
	)

	cmd := &cobra.Command{
		Use:   "supply-chain",
		Short: "Show production, consumption and depletion per material",
		Long: `Aggregate the latest colony snapshots of every linked character into one row per
material, sorted by tier, then worst net rate first.

Scope the view with --character, --planet, or a single launchpad network with
--character --planet --launchpad.

Examples:
  pi supply-chain
  pi supply-chain --character 90000001
  pi supply-chain --character 90000001 --planet 40000001 --launchpad 1003 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := resolveUserID()
			if err != nil {
				return err
			}
			if characterID == 0 && (planetID != 0 || launchpadID != 0) {
				characterID = defaultCharacterID()
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			response, err := a.mediator.Send(a.context(), &queries.GetSupplyChainQuery{
				UserID: user,
				Scope: supplychain.Scope{
					CharacterID:    characterID,
					PlanetID:       planetID,
					LaunchpadPinID: launchpadID,
				},
			})
			if err != nil {
				return err
			}
			result := response.(*queries.GetSupplyChainResponse)

			switch {
			case asJSON:
				return printSupplyChainJSON(result)
			case asTree:
				fmt.Print(NewTreeFormatter().FormatItems(result.Items))
			default:
				if err := printSupplyChainTable(result); err != nil {
					return err
				}
			}
			printWarnings(os.Stderr, result.Warnings)
			return nil
		},
	}

	cmd.Flags().Int64Var(&characterID, "character", 0, "Only this character's planets")
	cmd.Flags().Int64Var(&planetID, "planet", 0, "Only this planet")
	cmd.Flags().Int64Var(&launchpadID, "launchpad", 0, "Only this launchpad's network (needs --character and --planet)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&asTree, "tree", false, "Show producing and consuming planets per material")

	return cmd
}

func printSupplyChainTable(result *queries.GetSupplyChainResponse) error {
	if len(result.Items) == 0 {
		fmt.Println("No production or consumption found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "TIER\tMATERIAL\tSOURCE\tPRODUCED/H\tCONSUMED/H\tNET/H\tSTOCK\tSTOCKPILE\tDEPLETES IN\t")
	for _, item := range result.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%.1f\t%+.1f\t%d\t%d\t%s\t\n",
			item.TierName(), item.Name, item.Source,
			item.ProducedPerHour, item.ConsumedPerHour, item.NetPerHour,
			item.CurrentStock, item.StockpileQty, formatDepletion(item.DepletionHours))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nGenerated %s\n", result.GeneratedAt.Local().Format(time.DateTime))
	return nil
}

func printSupplyChainJSON(result *queries.GetSupplyChainResponse) error {
	items := make([]itemJSON, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, itemJSON{
			TypeID:          item.TypeID,
			Name:            item.Name,
			Tier:            item.TierName(),
			Source:          string(item.Source),
			ProducedPerHour: item.ProducedPerHour,
			ConsumedPerHour: item.ConsumedPerHour,
			NetPerHour:      item.NetPerHour,
			CurrentStock:    item.CurrentStock,
			StockpileQty:    item.StockpileQty,
			DepletionHours:  item.DepletionHours,
			Producers:       contributorsJSON(item.Producers),
			Consumers:       contributorsJSON(item.Consumers),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"generated_at": result.GeneratedAt,
		"items":        items,
		"warnings":     result.Warnings,
	})
}

func contributorsJSON(contributors []supplychain.Contributor) []contributorJSON {
	out := make([]contributorJSON, 0, len(contributors))
	for _, c := range contributors {
		out = append(out, contributorJSON{
			CharacterID:     c.CharacterID,
			CharacterName:   c.CharacterName,
			PlanetID:        c.PlanetID,
			PlanetType:      c.PlanetType,
			SolarSystemName: c.SolarSystemName,
			RatePerHour:     c.RatePerHour,
		})
	}
	return out
}

// formatDepletion renders hours until stock runs out, "-" when not depleting
func formatDepletion(hours *float64) string {
	if hours == nil {
		return "-"
	}
	d := time.Duration(*hours * float64(time.Hour))
	if d >= 48*time.Hour {
		return fmt.Sprintf("%.1fd", d.Hours()/24)
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
