package dia

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuotedAsset is one entry of the discovery list.
//
// `GET /v1/quotedAssets` response:
//
//	[{
//		"Asset": {
//			"Symbol": "BTC",
//			"Name": "Bitcoin",
//			"Address": "0x0000000000000000000000000000000000000000",
//			"Decimals": 8,
//			"Blockchain": "Bitcoin"
//		},
//		"Volume": 3818975389.095178
//	}, ...]
type QuotedAsset struct {
	Asset  Asset   `json:"Asset"`
	Volume float64 `json:"Volume"`
}

// Asset identifies a quotable asset on the DIA side.
type Asset struct {
	Symbol     string `json:"Symbol"`
	Name       string `json:"Name"`
	Address    string `json:"Address"`
	Decimals   uint8  `json:"Decimals"`
	Blockchain string `json:"Blockchain"`
}

// Quotation is the most recent quote for one asset.
//
// `GET /v1/assetQuotation/:blockchain/:address` response:
//
//	{
//		"Symbol": "BTC",
//		"Name": "Bitcoin",
//		"Address": "0x0000000000000000000000000000000000000000",
//		"Blockchain": "Bitcoin",
//		"Price": 16826.489316709616,
//		"PriceYesterday": 16813.219221169464,
//		"VolumeYesterdayUSD": 3680339928.151318,
//		"Time": "2022-12-24T13:33:59.982Z",
//		"Source": "diadata.org"
//	}
//
// Numeric fields are decimals so no precision is lost before the fixed-point
// conversion. Address and Blockchain may be empty (fiat quotes carry neither).
type Quotation struct {
	Symbol          string          `json:"Symbol"`
	Name            string          `json:"Name"`
	Address         string          `json:"Address"`
	Blockchain      string          `json:"Blockchain"`
	Price           decimal.Decimal `json:"Price"`
	PriceYesterday  decimal.Decimal `json:"PriceYesterday"`
	VolumeYesterday decimal.Decimal `json:"VolumeYesterdayUSD"`
	Time            time.Time       `json:"Time"`
	Source          string          `json:"Source"`
}

// DefaultFiatUSDQuotation is the constant quotation for the reference fiat
// unit: one USD is worth exactly one USD, with no traded volume.
func DefaultFiatUSDQuotation() Quotation {
	return Quotation{
		Symbol:         "USD-USD",
		Name:           "USD-X",
		Price:          decimal.NewFromInt(1),
		PriceYesterday: decimal.NewFromInt(1),
		Time:           time.Now().UTC(),
		Source:         "YahooFinance",
	}
}
