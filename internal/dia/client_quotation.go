package dia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GetQuotation fetches the most recent quotation for one quotable asset.
// The request is routed by the asset's tags: the reference fiat unit
// short-circuits to a constant without any network call, other fiat pairs go
// to the foreign-exchange endpoint, the AMPE token is served by GraphQL, and
// everything else uses the standard blockchain/address endpoint.
func (c *Client) GetQuotation(ctx context.Context, quoted QuotedAsset) (Quotation, error) {
	a := quoted.Asset
	switch routeFor(a) {
	case routeFiatReference:
		return DefaultFiatUSDQuotation(), nil
	case routeFiatForeign:
		url := fmt.Sprintf("%s/v1/foreignQuotation/YahooFinance/%s", c.baseURL, strings.ToUpper(a.Symbol))
		return c.getQuotation(ctx, url)
	case routeGraph:
		return c.getGraphQuotation(ctx)
	default:
		url := fmt.Sprintf("%s/v1/assetQuotation/%s/%s", c.baseURL, a.Blockchain, a.Address)
		return c.getQuotation(ctx, url)
	}
}

func (c *Client) getQuotation(ctx context.Context, url string) (Quotation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Quotation{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Quotation{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Quotation{}, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	var q Quotation
	if err := json.NewDecoder(res.Body).Decode(&q); err != nil {
		return Quotation{}, fmt.Errorf("decoding quotation: %w", err)
	}
	return q, nil
}

// ampeQuery reads the pool bundle holding the AMPE price.
const ampeQuery = `query { bundleById(id: "1") { ethPrice } }`

type graphRequest struct {
	Query string `json:"query"`
}

type graphResponse struct {
	Data *struct {
		BundleByID struct {
			EthPrice decimal.Decimal `json:"ethPrice"`
		} `json:"bundleById"`
	} `json:"data"`
}

func (c *Client) getGraphQuotation(ctx context.Context) (Quotation, error) {
	body, err := json.Marshal(graphRequest{Query: ampeQuery})
	if err != nil {
		return Quotation{}, fmt.Errorf("encoding query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphURL, bytes.NewReader(body))
	if err != nil {
		return Quotation{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Quotation{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Quotation{}, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	var resp graphResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return Quotation{}, fmt.Errorf("decoding graph response: %w", err)
	}
	if resp.Data == nil {
		return Quotation{}, fmt.Errorf("no price found for %s", graphSymbol)
	}

	return Quotation{
		Symbol:     graphSymbol,
		Blockchain: graphBlockchain,
		Price:      resp.Data.BundleByID.EthPrice,
		Time:       time.Now().UTC(),
		Source:     c.graphURL,
	}, nil
}
