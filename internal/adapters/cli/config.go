package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/eve-pi-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (PI_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (default user and character) are stored in ~/.eve-pi/config.json

Examples:
  pi config show
  pi config set-user --user 1
  pi config set-user --user 1 --character 90000001
  pi config clear`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetUserCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault(configPath)
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Printf("Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			fmt.Println("PI Configuration")
			fmt.Println("================")

			fmt.Println("User Preferences:")
			fmt.Printf("  Config file:        %s\n", userConfigHandler.GetConfigPath())
			fmt.Printf("  Default User:       %s\n", optionalID(userCfg.DefaultUserID))
			fmt.Printf("  Default Character:  %s\n", optionalID(userCfg.DefaultCharacterID))

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:               %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Printf("  URL:                %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Printf("  Path:               %s\n", cfg.Database.Path)
			default:
				fmt.Printf("  Host:               %s\n", cfg.Database.Host)
				fmt.Printf("  Port:               %d\n", cfg.Database.Port)
				fmt.Printf("  Database:           %s\n", cfg.Database.Name)
				fmt.Printf("  User:               %s\n", cfg.Database.User)
			}
			fmt.Printf("  Max Connections:    %d\n", cfg.Database.Pool.MaxOpen)

			fmt.Println("\nESI:")
			fmt.Printf("  Base URL:           %s\n", cfg.ESI.BaseURL)
			fmt.Printf("  Timeout:            %s\n", cfg.ESI.Timeout)
			fmt.Printf("  Rate Limit:         %d req/s (burst: %d)\n",
				cfg.ESI.RateLimit.Requests, cfg.ESI.RateLimit.Burst)
			fmt.Printf("  Max Retries:        %d\n", cfg.ESI.Retry.MaxAttempts)
			fmt.Printf("  Circuit Breaker:    %d failures, %s cooldown\n",
				cfg.ESI.CircuitBreaker.MaxFailures, cfg.ESI.CircuitBreaker.Cooldown)

			fmt.Println("\nSync:")
			fmt.Printf("  Interval:           %s\n", cfg.Sync.Interval)
			fmt.Printf("  Planet Concurrency: %d\n", cfg.Sync.PlanetConcurrency)
			fmt.Printf("  Fetch Timeout:      %s\n", cfg.Sync.FetchTimeout)

			fmt.Println("\nDaemon:")
			fmt.Printf("  Socket Path:        %s\n", cfg.Daemon.SocketPath)
			fmt.Printf("  PID File:           %s\n", cfg.Daemon.PIDFile)

			fmt.Println("\nEconomics:")
			fmt.Printf("  Price Source:       %s\n", cfg.Economics.DefaultPriceSource)
			fmt.Printf("  Export Tax:         %.2f%%\n", cfg.Economics.ExportTaxRate*100)
			fmt.Printf("  Import Tax:         %.2f%%\n", cfg.Economics.ImportTaxRate*100)

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:              %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:             %s\n", cfg.Logging.Format)
			fmt.Printf("  Persist Sync Logs:  %t\n", cfg.Logging.PersistSyncLogs)

			return nil
		},
	}

	return cmd
}

func newConfigSetUserCommand() *cobra.Command {
	var characterID int64

	cmd := &cobra.Command{
		Use:   "set-user",
		Short: "Set default user and character",
		Long: `Set the default user (and optionally character) used when --user is omitted.

Examples:
  pi config set-user --user 1
  pi config set-user --user 1 --character 90000001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user flag is required")
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultUser(userID); err != nil {
				return fmt.Errorf("failed to set default user: %w", err)
			}
			if characterID > 0 {
				if err := userConfigHandler.SetDefaultCharacter(characterID); err != nil {
					return fmt.Errorf("failed to set default character: %w", err)
				}
			}

			fmt.Println("✓ Defaults saved")
			fmt.Printf("  User:      %d\n", userID)
			if characterID > 0 {
				fmt.Printf("  Character: %d\n", characterID)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&characterID, "character", 0, "Default character for scoped views")

	return cmd
}

func newConfigClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear default user and character",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.Clear(); err != nil {
				return fmt.Errorf("failed to clear defaults: %w", err)
			}

			fmt.Println("✓ Defaults cleared")
			fmt.Println("\nYou must now pass --user to commands.")
			return nil
		},
	}

	return cmd
}

func optionalID(id *int64) string {
	if id == nil {
		return "(not set)"
	}
	return fmt.Sprintf("%d", *id)
}

// maskPassword hides the password part of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
