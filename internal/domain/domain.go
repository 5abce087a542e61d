package domain

import "time"

// Category is one of the fixed market-data groupings served by the dashboard.
type Category string

const (
	CategoryFearGreed    Category = "fear_greed"
	CategoryMiningCost   Category = "mining_cost"
	CategoryDistribution Category = "distribution"
	CategoryGoogleTrends Category = "google_trends"
	CategoryOrderBook    Category = "order_book"
	CategoryEntities     Category = "entities"

	// List-valued categories: replaced wholesale on refresh, never merged.
	CategoryEconomicIndicators Category = "economic_indicators"
	CategorySignalHistory      Category = "signal_history"
)

var ScalarCategories = []Category{
	CategoryFearGreed,
	CategoryMiningCost,
	CategoryDistribution,
	CategoryGoogleTrends,
	CategoryOrderBook,
	CategoryEntities,
}

func (c Category) IsList() bool {
	return c == CategoryEconomicIndicators || c == CategorySignalHistory
}

func (c Category) IsScalar() bool {
	for _, sc := range ScalarCategories {
		if c == sc {
			return true
		}
	}
	return false
}

// SupportedSymbols are the trading pairs tracked by the alert pipeline.
var SupportedSymbols = []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}

// DefaultAsset is used by category endpoints when no symbol is given.
const DefaultAsset = "BTC"

// MailMessage is an immutable view of a fetched mailbox message.
// Header names are stored lowercased.
type MailMessage struct {
	ID           string
	InternalDate time.Time
	Headers      map[string]string
	Body         string
}

func (m MailMessage) Header(name string) string {
	return m.Headers[name]
}

// Alert is a classified mailbox message: a symbol plus the indicator
// fields extracted from its body. Alerts are transient; they only exist
// long enough to be folded into the indicator cache.
type Alert struct {
	Symbol    string            `json:"symbol"`
	Fields    map[string]string `json:"fields"`
	Timestamp time.Time         `json:"timestamp"`
}

// SignalRecord is one entry of the signal-history list, extracted from a
// TradingView "Alert: ..." message.
type SignalRecord struct {
	Subtitle    string    `json:"subtitle"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Time        string    `json:"time"`
	Timestamp   time.Time `json:"timestamp"`
}

// EconomicIndicatorRow is one economic-calendar event. (Date, Time,
// EventName) is the uniqueness key; the four value fields are nullable.
type EconomicIndicatorRow struct {
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	EventName string  `json:"event_name"`
	Actual    *string `json:"actual_value"`
	Previous  *string `json:"previous_value"`
	Consensus *string `json:"consensus_value"`
	Forecast  *string `json:"forecast_value"`
}
