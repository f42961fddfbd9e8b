package provider

import (
	"context"
	"fmt"

	"github.com/wonny/hunter/internal/contracts"
)

// PriceMember adapts a PriceSource. Empty or out-of-order series count as failures.
func PriceMember(name string, src contracts.PriceSource) Member[*contracts.PriceSeries] {
	return Member[*contracts.PriceSeries]{
		Name: name,
		Fetch: func(ctx context.Context, req Request) (*contracts.PriceSeries, error) {
			series, err := src.History(ctx, req.Subject, req.Lookback)
			if err != nil {
				return nil, err
			}
			if series != nil {
				if err := series.Validate(); err != nil {
					return nil, fmt.Errorf("malformed payload: %w", err)
				}
			}
			return series, nil
		},
		Empty: func(s *contracts.PriceSeries) bool { return s.Len() == 0 },
	}
}

// ProfileMember adapts a ProfileSource
func ProfileMember(name string, src contracts.ProfileSource) Member[*contracts.CompanyProfile] {
	return Member[*contracts.CompanyProfile]{
		Name: name,
		Fetch: func(ctx context.Context, req Request) (*contracts.CompanyProfile, error) {
			return src.Profile(ctx, req.Subject)
		},
		Empty: func(p *contracts.CompanyProfile) bool { return !p.HasData() },
	}
}

// StatementMember adapts a StatementSource
func StatementMember(name string, src contracts.StatementSource) Member[*contracts.FinancialStatement] {
	return Member[*contracts.FinancialStatement]{
		Name: name,
		Fetch: func(ctx context.Context, req Request) (*contracts.FinancialStatement, error) {
			return src.Statements(ctx, req.Subject)
		},
		Empty: func(s *contracts.FinancialStatement) bool { return !s.HasData() },
	}
}

// CategorySupporter is implemented by universe sources that serve only some categories
type CategorySupporter interface {
	Supports(category string) bool
}

// UniverseMember adapts a UniverseSource
func UniverseMember(name string, src contracts.UniverseSource) Member[[]string] {
	m := Member[[]string]{
		Name: name,
		Fetch: func(ctx context.Context, req Request) ([]string, error) {
			return src.List(ctx, req.Subject)
		},
		Empty: func(symbols []string) bool { return len(symbols) == 0 },
	}
	if cs, ok := src.(CategorySupporter); ok {
		m.Supports = cs.Supports
	}
	return m
}
