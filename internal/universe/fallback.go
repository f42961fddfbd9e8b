package universe

// Curated fallback lists, served only when every universe provider fails.
// Every supported category has one.
var fallbacks = map[string][]string{
	"nifty-smallcap-250": {
		"AARTIIND.NS", "AMBER.NS", "ANGELONE.NS", "BSOFT.NS", "CDSL.NS", "CAMS.NS",
		"CEATLTD.NS", "CYIENT.NS", "DEEPAKFERT.NS", "ELGIEQUIP.NS", "FINCABLES.NS",
		"GLENMARK.NS", "HFCL.NS", "IEX.NS", "KEI.NS", "KPITTECH.NS", "NATCOPHARM.NS",
		"RADICO.NS", "SONACOMS.NS", "ZENSARTECH.NS",
	},
	"nifty-midcap-150": {
		"ABCAPITAL.NS", "ALKEM.NS", "ASHOKLEY.NS", "ASTRAL.NS", "AUBANK.NS", "BHARATFORG.NS",
		"COFORGE.NS", "CUMMINSIND.NS", "DIXON.NS", "FEDERALBNK.NS", "INDHOTEL.NS",
		"LUPIN.NS", "MPHASIS.NS", "PERSISTENT.NS", "PIIND.NS", "POLYCAB.NS",
		"SUPREMEIND.NS", "TATACOMM.NS", "TORNTPOWER.NS", "VOLTAS.NS",
	},
	"sp500": {
		"AAPL", "MSFT", "NVDA", "AMZN", "GOOGL", "META", "BRK-B", "LLY", "AVGO", "JPM",
		"V", "UNH", "XOM", "MA", "COST", "HD", "PG", "JNJ", "ABBV", "NFLX",
	},
	"sp400-midcap": {
		"EME", "WSM", "CSL", "RS", "LII", "IBKR", "PSTG", "WSO", "RPM", "BURL",
		"MANH", "OC", "TOL", "USFD", "CASY", "FIX", "DT", "GGG", "THC", "SAIA",
	},
	"sp600-smallcap": {
		"MLI", "ATI", "SPSC", "FN", "ENSG", "ANF", "AAON", "BMI", "MTH", "CRS",
		"IBP", "SPXC", "AWI", "GKOS", "ALK", "BCC", "MARA", "ITRI", "FSS", "ACIW",
	},
	"nasdaq100": {
		"AAPL", "MSFT", "NVDA", "AMZN", "META", "AVGO", "GOOGL", "TSLA", "COST", "NFLX",
		"AMD", "PEP", "ADBE", "QCOM", "TMUS", "CSCO", "INTU", "AMGN", "ISRG", "TXN",
	},
}

func init() {
	small := fallbacks["nifty-smallcap-250"]
	mid := fallbacks["nifty-midcap-150"]
	combined := make([]string, 0, len(small)+len(mid))
	combined = append(combined, small...)
	fallbacks["nifty-smallmid"] = append(combined, mid...)
}

// Fallback returns a copy of the static list for a category
func Fallback(category string) ([]string, bool) {
	list, ok := fallbacks[category]
	if !ok {
		return nil, false
	}
	return append([]string(nil), list...), true
}
