package contracts

import "context"

// DataKind names one kind of fetched data
type DataKind string

const (
	KindPrice     DataKind = "price"
	KindProfile   DataKind = "profile"
	KindStatement DataKind = "statement"
	KindUniverse  DataKind = "universe"
	KindRegime    DataKind = "regime"
)

// UniverseSource lists the constituents of a named category
// ⭐ SSOT: 외부 데이터 소스 포트 (provider chain의 구성원)
type UniverseSource interface {
	List(ctx context.Context, category string) ([]string, error)
}

// PriceSource returns daily history for a symbol
type PriceSource interface {
	History(ctx context.Context, symbol string, lookback Lookback) (*PriceSeries, error)
}

// ProfileSource returns company profile data for a symbol
type ProfileSource interface {
	Profile(ctx context.Context, symbol string) (*CompanyProfile, error)
}

// StatementSource returns the latest financial statement snapshot for a symbol
type StatementSource interface {
	Statements(ctx context.Context, symbol string) (*FinancialStatement, error)
}

// Bundle is everything fetched for one symbol during a scan.
// Prices is always present; Profile and Statement may be nil.
type Bundle struct {
	Symbol    string              `json:"symbol"`
	Prices    *PriceSeries        `json:"prices"`
	Profile   *CompanyProfile     `json:"profile,omitempty"`
	Statement *FinancialStatement `json:"statement,omitempty"`
	Sources   map[DataKind]string `json:"sources"`
}
