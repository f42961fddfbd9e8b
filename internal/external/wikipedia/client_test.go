package wikipedia

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

const sp500HTML = `<html><body>
<table class="wikitable sortable" id="constituents">
<tbody>
<tr><th>Symbol</th><th>Security</th><th>GICS Sector</th></tr>
<tr><td><a href="#">MMM</a></td><td>3M</td><td>Industrials</td></tr>
<tr><td><a href="#">BRK.B</a></td><td>Berkshire Hathaway</td><td>Financials</td></tr>
<tr><td>AAPL</td><td>Apple Inc.</td><td>Information Technology</td></tr>
</tbody>
</table>
<table class="wikitable"><tr><th>Date</th><th>Added</th></tr><tr><td>2024</td><td>XYZ</td></tr></table>
</body></html>`

const nasdaqHTML = `<html><body>
<table class="wikitable"><tr><th>Year</th><th>Index</th></tr><tr><td>2023</td><td>15000</td></tr></table>
<table class="wikitable sortable" id="constituents">
<tr><th>Company</th><th>Ticker</th><th>GICS Sector</th></tr>
<tr><td>Adobe Inc.</td><td>ADBE</td><td>Information Technology</td></tr>
<tr><td>Amazon</td><td>AMZN</td><td>Consumer Discretionary</td></tr>
</table>
</body></html>`

func TestParseConstituents(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    []string
		wantErr bool
	}{
		{"symbol column first", sp500HTML, []string{"MMM", "BRK-B", "AAPL"}, false},
		{"ticker column second table", nasdaqHTML, []string{"ADBE", "AMZN"}, false},
		{"no table", "<html><body><p>moved</p></body></html>", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseConstituents([]byte(tt.html))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, sp500HTML)
	}))
	defer server.Close()

	client := NewClient(httputil.New(ProviderName, logger.Nop()), logger.Nop(), server.URL)

	symbols, err := client.List(context.Background(), "sp500")
	require.NoError(t, err)
	assert.Len(t, symbols, 3)
	assert.Equal(t, "/List_of_S%26P_500_companies", gotPath)

	assert.True(t, client.Supports("sp600-smallcap"))
	assert.False(t, client.Supports("nifty-smallmid"))
}
