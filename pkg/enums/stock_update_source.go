package enums

import "fmt"

// StockUpdateSource maps to the stock_update_source enum in Postgres.
type StockUpdateSource string

const (
	StockUpdateSourceWebhook StockUpdateSource = "webhook"
	StockUpdateSourceManual  StockUpdateSource = "manual"
	StockUpdateSourceSystem  StockUpdateSource = "system"
)

var validStockUpdateSources = []StockUpdateSource{
	StockUpdateSourceWebhook,
	StockUpdateSourceManual,
	StockUpdateSourceSystem,
}

// IsValid reports whether the value matches the canonical source enum.
func (s StockUpdateSource) IsValid() bool {
	for _, candidate := range validStockUpdateSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockUpdateSource converts raw input into StockUpdateSource.
func ParseStockUpdateSource(value string) (StockUpdateSource, error) {
	for _, candidate := range validStockUpdateSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock update source %q", value)
}

func (s StockUpdateSource) String() string {
	return string(s)
}
