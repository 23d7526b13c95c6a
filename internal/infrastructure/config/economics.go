package config

// EconomicsConfig holds pricing and customs tax settings
type EconomicsConfig struct {
	DefaultPriceSource string  `mapstructure:"default_price_source" validate:"required,price_source"`
	ExportTaxRate      float64 `mapstructure:"export_tax_rate" validate:"min=0,max=1"`
	ImportTaxRate      float64 `mapstructure:"import_tax_rate" validate:"min=0,max=1"`
}
