package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	socketPath string
	userID     int64
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pi",
		Short: "EVE Online planetary industry supply chain CLI",
		Long: `pi reads the colony snapshots kept fresh by pi-daemon and turns them into a
supply chain view, profit breakdowns and stockpile targets.

Examples:
  pi character add --id 90000001 --name "Pilot One" --token <esi-token>
  pi supply-chain
  pi supply-chain --character 90000001 --planet 40000001 --launchpad 1003
  pi profit --price-source buy
  pi stockpile resize --type 2398 --total 12000
  pi stockpile resize-all --preset 1w
  pi sync now
  pi sync logs --level WARNING`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml, ./configs, /etc/eve-pi)")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", os.Getenv("PI_DAEMON_SOCKET"),
		"Path to daemon Unix socket (default: daemon.socket_path from config)")
	rootCmd.PersistentFlags().Int64Var(&userID, "user", 0,
		"User ID (default: set with 'pi config set-user')")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewCharacterCommand())
	rootCmd.AddCommand(NewSupplyChainCommand())
	rootCmd.AddCommand(NewProfitCommand())
	rootCmd.AddCommand(NewStockpileCommand())
	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewHealthCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
