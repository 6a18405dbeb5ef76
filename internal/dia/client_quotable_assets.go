package dia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// GetQuotableAssets lists the assets DIA currently quotes, with their
// blockchain/symbol identity and recent volume.
func (c *Client) GetQuotableAssets(ctx context.Context) ([]QuotedAsset, error) {
	url := c.baseURL + "/v1/quotedAssets"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	var assets []QuotedAsset
	if err := json.NewDecoder(res.Body).Decode(&assets); err != nil {
		return nil, fmt.Errorf("decoding quotable assets: %w", err)
	}
	return assets, nil
}
