package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hunter/pkg/httputil"
	"github.com/wonny/hunter/pkg/logger"
)

func newTestClient(t *testing.T, bodies map[string]string) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, bodies[r.URL.Query().Get("function")])
	}))
	t.Cleanup(server.Close)

	return NewClient(httputil.New(ProviderName, logger.Nop()), logger.Nop(), "demo", server.URL)
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		want  float64
	}{
		{"0.253", true, 0.253},
		{" 12 ", true, 12},
		{"None", false, 0},
		{"-", false, 0},
		{"", false, 0},
		{"n/a", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := number(tt.in)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.InDelta(t, tt.want, got.Float64, 1e-9)
			}
		})
	}
}

func TestProfile(t *testing.T) {
	client := newTestClient(t, map[string]string{
		"OVERVIEW": `{"Symbol":"IBM","Name":"International Business Machines","Sector":"TECHNOLOGY",
			"MarketCapitalization":"175000000000","PERatio":"22.4","ReturnOnEquityTTM":"0.359",
			"ReturnOnAssetsTTM":"0.047","ProfitMargin":"0.12","QuarterlyRevenueGrowthYOY":"0.041",
			"QuarterlyEarningsGrowthYOY":"None","Beta":"0.71"}`,
	})

	p, err := client.Profile(context.Background(), "IBM")
	require.NoError(t, err)

	assert.Equal(t, "TECHNOLOGY", p.Sector.String)
	assert.InDelta(t, 1.75e11, p.MarketCap.Float64, 1)
	assert.InDelta(t, 0.359, p.ROE.Float64, 1e-9)
	assert.False(t, p.EarningsGrowth.Valid)
	assert.False(t, p.DebtToEquity.Valid, "not in OVERVIEW")
	assert.True(t, p.HasData())
}

func TestProfile_UnknownSymbol(t *testing.T) {
	client := newTestClient(t, map[string]string{"OVERVIEW": `{}`})

	p, err := client.Profile(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.False(t, p.HasData())
}

func TestQuery_Throttled(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"note", `{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`},
		{"information", `{"Information":"We have detected your API key as demo"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, map[string]string{"OVERVIEW": tt.body})
			_, err := client.Profile(context.Background(), "IBM")
			assert.ErrorIs(t, err, ErrThrottled)
		})
	}
}

func TestStatements(t *testing.T) {
	client := newTestClient(t, map[string]string{
		"BALANCE_SHEET": `{"symbol":"IBM","quarterlyReports":[{"fiscalDateEnding":"2024-03-31",
			"shortLongTermDebtTotal":"56000","totalShareholderEquity":"23000","propertyPlantEquipment":"5500",
			"totalCurrentAssets":"34000","totalCurrentLiabilities":"33000"}]}`,
		"CASH_FLOW": `{"symbol":"IBM","quarterlyReports":[{"operatingCashflow":"4200"}]}`,
	})

	s, err := client.Statements(context.Background(), "IBM")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-31", s.PeriodEnd.String)
	assert.Equal(t, 56000.0, s.TotalDebt.Float64)
	assert.Equal(t, 4200.0, s.OperatingCashFlow.Float64)
}

func TestMissingKey(t *testing.T) {
	client := NewClient(httputil.New(ProviderName, logger.Nop()), logger.Nop(), "", "")
	_, err := client.Statements(context.Background(), "IBM")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
