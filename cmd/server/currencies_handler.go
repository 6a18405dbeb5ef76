package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"diabatcher/internal/asset"
	"diabatcher/internal/config"
	"diabatcher/internal/storage"
)

// handleGetCurrencies serves GET /currencies/{symbols}, a comma-separated
// symbol list. Unknown symbols are omitted, never an error.
func handleGetCurrencies(w http.ResponseWriter, r *http.Request, store *storage.CoinInfoStorage) {
	raw := strings.TrimPrefix(r.URL.Path, "/currencies/")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	symbols := config.SplitCSV(raw)
	writeJSON(w, store.GetBySymbols(symbols))
}

type currencyKey struct {
	Blockchain string `json:"blockchain"`
	Symbol     string `json:"symbol"`
}

// handlePostCurrencies serves POST /currencies with a JSON array of
// blockchain/symbol pairs, the full-identity lookup.
func handlePostCurrencies(w http.ResponseWriter, r *http.Request, store *storage.CoinInfoStorage) {
	var keys []currencyKey
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&keys); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	specs := make([]asset.Specifier, 0, len(keys))
	for _, k := range keys {
		specs = append(specs, asset.Specifier{Blockchain: k.Blockchain, Symbol: k.Symbol})
	}
	writeJSON(w, store.GetByAssets(specs))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
