package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/eve-pi-go/internal/application/supplychain/queries"
)

// NewProfitCommand creates the profit command
func NewProfitCommand() *cobra.Command {
	var (
		priceSource string
		asJSON      bool
		detailed    bool
	)

	cmd := &cobra.Command{
		Use:   "profit",
		Short: "Show hourly factory profit per planet",
		Long: `Value every factory's hourly output against its inputs and customs taxes.

Price sources: buy, sell, split (midpoint). Defaults to economics.default_price_source.

Examples:
  pi profit
  pi profit --price-source buy --detailed`,
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

			response, err := a.mediator.Send(a.context(), &queries.GetProfitBreakdownQuery{
				UserID:      user,
				PriceSource: priceSource,
			})
			if err != nil {
				return err
			}
			result := response.(*queries.GetProfitBreakdownResponse)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			if err := printProfitTable(result, detailed); err != nil {
				return err
			}
			printWarnings(os.Stderr, result.Warnings)
			return nil
		},
	}

	cmd.Flags().StringVar(&priceSource, "price-source", "", "Price source: buy, sell or split")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show one line per factory")

	return cmd
}

func printProfitTable(result *queries.GetProfitBreakdownResponse, detailed bool) error {
	if len(result.Planets) == 0 {
		fmt.Println("No planets found")
		return nil
	}

	fmt.Printf("Hourly profit (%s prices)\n\n", result.PriceSource)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "CHARACTER\tPLANET\tOUTPUT\tINPUTS\tEXPORT TAX\tIMPORT TAX\tPROFIT\t")
	for _, planet := range result.Planets {
		name := planet.SolarSystemName
		if name == "" {
			name = fmt.Sprintf("%d", planet.PlanetID)
		}
		fmt.Fprintf(w, "%s\t%s (%s)\t%s\t%s\t%s\t%s\t%s\t\n",
			planet.CharacterName, name, planet.PlanetType,
			isk(planet.OutputValue), isk(planet.InputCost),
			isk(planet.ExportTax), isk(planet.ImportTax), isk(planet.Profit.Profit))
		if !detailed {
			continue
		}
		for _, factory := range planet.Factories {
			fmt.Fprintf(w, "\t  %s x%.1f/h\t%s\t%s\t%s\t%s\t%s\t\n",
				factory.OutputName, factory.OutputPerHour,
				isk(factory.OutputValue), isk(factory.InputCost),
				isk(factory.ExportTax), isk(factory.ImportTax), isk(factory.Profit.Profit))
		}
	}
	fmt.Fprintf(w, "TOTAL\t\t%s\t%s\t%s\t%s\t%s\t\n",
		isk(result.TotalOutputValue), isk(result.TotalInputCost),
		isk(result.TotalExportTax), isk(result.TotalImportTax), isk(result.TotalProfit))
	return w.Flush()
}

// isk renders a decimal ISK amount with two places
func isk(d decimal.Decimal) string {
	return d.StringFixed(2)
}
