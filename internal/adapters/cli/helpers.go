package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"gorm.io/gorm"

	"github.com/andrescamacho/eve-pi-go/internal/adapters/logging"
	"github.com/andrescamacho/eve-pi-go/internal/adapters/persistence"
	"github.com/andrescamacho/eve-pi-go/internal/application/common"
	"github.com/andrescamacho/eve-pi-go/internal/application/setup"
	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/infrastructure/config"
	"github.com/andrescamacho/eve-pi-go/internal/infrastructure/database"
)

// app is the wiring a single CLI invocation needs
type app struct {
	cfg      *config.Config
	db       *gorm.DB
	mediator common.Mediator
	syncLogs persistence.SyncLogRepository
	logger   common.Logger
}

// newApp loads config, opens the database and builds a mediator with every handler
func newApp() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	source, err := planetary.ParsePriceSource(cfg.Economics.DefaultPriceSource)
	if err != nil {
		database.Close(db)
		return nil, err
	}

	registry := setup.NewHandlerRegistry(
		persistence.NewGormCharacterRepository(db, nil),
		persistence.NewGormColonyRepository(db),
		persistence.NewGormMarkerRepository(db, nil),
		persistence.NewGormReferenceRepository(db),
		planetary.TaxRates{Export: cfg.Economics.ExportTaxRate, Import: cfg.Economics.ImportTaxRate},
		source,
		nil,
	)
	mediator, err := registry.CreateConfiguredMediator()
	if err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to configure handlers: %w", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	return &app{
		cfg:      cfg,
		db:       db,
		mediator: mediator,
		syncLogs: persistence.NewGormSyncLogRepository(db, nil),
		logger:   logging.NewConsoleLogger(os.Stderr, cfg.Logging.Format, level),
	}, nil
}

// Close releases the database connection
func (a *app) Close() {
	database.Close(a.db)
}

// context returns a background context carrying the CLI logger
func (a *app) context() context.Context {
	return common.WithLogger(context.Background(), a.logger)
}

// resolveUserID resolves the user from flags or defaults.
// Priority: --user flag > user config default.
func resolveUserID() (int64, error) {
	if userID > 0 {
		return userID, nil
	}

	userConfigHandler, err := config.NewUserConfigHandler()
	if err != nil {
		return 0, fmt.Errorf("no user specified and failed to load user config: %w", err)
	}
	userCfg, err := userConfigHandler.Load()
	if err != nil {
		return 0, fmt.Errorf("no user specified and failed to load user config: %w", err)
	}
	if userCfg.DefaultUserID != nil {
		return *userCfg.DefaultUserID, nil
	}

	return 0, fmt.Errorf("no user specified: use --user, or set a default with 'pi config set-user'")
}

// defaultCharacterID returns the configured default character, or 0
func defaultCharacterID() int64 {
	userConfigHandler, err := config.NewUserConfigHandler()
	if err != nil {
		return 0
	}
	userCfg, err := userConfigHandler.Load()
	if err != nil || userCfg.DefaultCharacterID == nil {
		return 0
	}
	return *userCfg.DefaultCharacterID
}

// resolveSocketPath returns --socket when set, else the configured daemon socket
func resolveSocketPath() string {
	if socketPath != "" {
		return socketPath
	}
	return config.LoadConfigOrDefault(configPath).Daemon.SocketPath
}

// printWarnings lists reference data gaps after a report
func printWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d warning(s):\n", len(warnings))
	for _, warning := range warnings {
		fmt.Fprintf(w, "  ! %s\n", warning)
	}
}
