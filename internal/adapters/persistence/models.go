package persistence

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CharacterModel represents the characters table
type CharacterModel struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name         string     `gorm:"column:name;not null"`
	UserID       int64      `gorm:"column:user_id;not null;index"`
	AccessToken  string     `gorm:"column:access_token"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null"`
	LastSyncedAt *time.Time `gorm:"column:last_synced_at"`
}

func (CharacterModel) TableName() string {
	return "characters"
}

// PlanetModel represents the planets table, one row per (character, planet)
type PlanetModel struct {
	CharacterID   int64     `gorm:"column:character_id;primaryKey;autoIncrement:false"`
	PlanetID      int64     `gorm:"column:planet_id;primaryKey;autoIncrement:false"`
	PlanetType    string    `gorm:"column:planet_type;not null"`
	SolarSystemID int64     `gorm:"column:solar_system_id;not null"`
	NumPins       int       `gorm:"column:num_pins;not null;default:0"`
	UpgradeLevel  int       `gorm:"column:upgrade_level;not null;default:0"`
	LastUpdate    time.Time `gorm:"column:last_update"`
	SyncedAt      time.Time `gorm:"column:synced_at"`
	Fingerprint   string    `gorm:"column:fingerprint"`
}

func (PlanetModel) TableName() string {
	return "planets"
}

// PlanetPinModel represents the planet_pins table
type PlanetPinModel struct {
	CharacterID      int64          `gorm:"column:character_id;primaryKey;autoIncrement:false"`
	PlanetID         int64          `gorm:"column:planet_id;primaryKey;autoIncrement:false"`
	PinID            int64          `gorm:"column:pin_id;primaryKey;autoIncrement:false"`
	TypeID           int32          `gorm:"column:type_id;not null"`
	Kind             string         `gorm:"column:kind;not null"`
	Latitude         float64        `gorm:"column:latitude"`
	Longitude        float64        `gorm:"column:longitude"`
	InstallTime      *time.Time     `gorm:"column:install_time"`
	ExpiryTime       *time.Time     `gorm:"column:expiry_time"`
	LastCycleStart   *time.Time     `gorm:"column:last_cycle_start"`
	SchematicID      *int32         `gorm:"column:schematic_id"`
	FactorySchematic *int32         `gorm:"column:factory_schematic_id"`
	Contents         datatypes.JSON `gorm:"column:contents"`
	ExtractorDetails datatypes.JSON `gorm:"column:extractor_details"` // null unless kind is extractor
}

func (PlanetPinModel) TableName() string {
	return "planet_pins"
}

// PlanetLinkModel represents the planet_links table
type PlanetLinkModel struct {
	ID               int64 `gorm:"column:id;primaryKey;autoIncrement"`
	CharacterID      int64 `gorm:"column:character_id;not null;index:idx_planet_links_planet"`
	PlanetID         int64 `gorm:"column:planet_id;not null;index:idx_planet_links_planet"`
	SourcePinID      int64 `gorm:"column:source_pin_id;not null"`
	DestinationPinID int64 `gorm:"column:destination_pin_id;not null"`
	LinkLevel        int   `gorm:"column:link_level;not null;default:0"`
}

func (PlanetLinkModel) TableName() string {
	return "planet_links"
}

// PlanetRouteModel represents the planet_routes table
type PlanetRouteModel struct {
	CharacterID      int64          `gorm:"column:character_id;primaryKey;autoIncrement:false"`
	PlanetID         int64          `gorm:"column:planet_id;primaryKey;autoIncrement:false"`
	RouteID          int64          `gorm:"column:route_id;primaryKey;autoIncrement:false"`
	SourcePinID      int64          `gorm:"column:source_pin_id;not null"`
	DestinationPinID int64          `gorm:"column:destination_pin_id;not null"`
	ContentTypeID    int32          `gorm:"column:content_type_id;not null"`
	Quantity         int64          `gorm:"column:quantity;not null"`
	Waypoints        datatypes.JSON `gorm:"column:waypoints"`
}

func (PlanetRouteModel) TableName() string {
	return "planet_routes"
}

// StockpileMarkerModel represents the stockpile_markers table.
// Absent container and division are stored as 0 so the unique key works on every driver.
type StockpileMarkerModel struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          int64     `gorm:"column:user_id;not null;uniqueIndex:idx_stockpile_marker_key,priority:1"`
	TypeID          int32     `gorm:"column:type_id;not null;uniqueIndex:idx_stockpile_marker_key,priority:2"`
	OwnerType       string    `gorm:"column:owner_type;not null;uniqueIndex:idx_stockpile_marker_key,priority:3"`
	OwnerID         int64     `gorm:"column:owner_id;not null;uniqueIndex:idx_stockpile_marker_key,priority:4"`
	LocationID      int64     `gorm:"column:location_id;not null;uniqueIndex:idx_stockpile_marker_key,priority:5"`
	ContainerID     int64     `gorm:"column:container_id;not null;default:0;uniqueIndex:idx_stockpile_marker_key,priority:6"`
	DivisionNumber  int       `gorm:"column:division_number;not null;default:0;uniqueIndex:idx_stockpile_marker_key,priority:7"`
	DesiredQuantity int64     `gorm:"column:desired_quantity;not null;default:0"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (StockpileMarkerModel) TableName() string {
	return "stockpile_markers"
}

// ReferenceTypeModel represents the reference_types table (static data, read-only here)
type ReferenceTypeModel struct {
	TypeID int32  `gorm:"column:type_id;primaryKey;autoIncrement:false"`
	Name   string `gorm:"column:name;not null"`
	Tier   string `gorm:"column:tier"`
}

func (ReferenceTypeModel) TableName() string {
	return "reference_types"
}

// ReferenceSchematicModel represents the reference_schematics table
type ReferenceSchematicModel struct {
	SchematicID    int32                          `gorm:"column:schematic_id;primaryKey;autoIncrement:false"`
	Name           string                         `gorm:"column:name;not null"`
	CycleTime      int                            `gorm:"column:cycle_time;not null"`
	OutputTypeID   int32                          `gorm:"column:output_type_id;not null"`
	OutputQuantity int64                          `gorm:"column:output_quantity;not null"`
	Inputs         []ReferenceSchematicInputModel `gorm:"foreignKey:SchematicID;references:SchematicID"`
}

func (ReferenceSchematicModel) TableName() string {
	return "reference_schematics"
}

// ReferenceSchematicInputModel represents the reference_schematic_inputs table
type ReferenceSchematicInputModel struct {
	SchematicID int32 `gorm:"column:schematic_id;primaryKey;autoIncrement:false"`
	TypeID      int32 `gorm:"column:type_id;primaryKey;autoIncrement:false"`
	Quantity    int64 `gorm:"column:quantity;not null"`
}

func (ReferenceSchematicInputModel) TableName() string {
	return "reference_schematic_inputs"
}

// MarketPriceModel represents the market_prices table, filled by an external price feed
type MarketPriceModel struct {
	TypeID    int32           `gorm:"column:type_id;primaryKey;autoIncrement:false"`
	Buy       decimal.Decimal `gorm:"column:buy;type:numeric(20,2);not null;default:0"`
	Sell      decimal.Decimal `gorm:"column:sell;type:numeric(20,2);not null;default:0"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (MarketPriceModel) TableName() string {
	return "market_prices"
}

// SolarSystemModel represents the solar_systems table
type SolarSystemModel struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name string `gorm:"column:name;not null"`
}

func (SolarSystemModel) TableName() string {
	return "solar_systems"
}

// SyncLogModel represents the sync_logs table
type SyncLogModel struct {
	ID          int64          `gorm:"column:id;primaryKey;autoIncrement"`
	RunID       string         `gorm:"column:run_id;index"`
	CharacterID int64          `gorm:"column:character_id;index;default:0"`
	Timestamp   time.Time      `gorm:"column:timestamp;not null;index"`
	Level       string         `gorm:"column:level;not null;default:'INFO'"`
	Message     string         `gorm:"column:message;type:text;not null"`
	Metadata    datatypes.JSON `gorm:"column:metadata"`
}

func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// AllModels lists every model for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&CharacterModel{},
		&PlanetModel{},
		&PlanetPinModel{},
		&PlanetLinkModel{},
		&PlanetRouteModel{},
		&StockpileMarkerModel{},
		&ReferenceTypeModel{},
		&ReferenceSchematicModel{},
		&ReferenceSchematicInputModel{},
		&MarketPriceModel{},
		&SolarSystemModel{},
		&SyncLogModel{},
	}
}
