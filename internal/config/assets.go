package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AssetEntry is one allow-list entry in the YAML assets file:
//
//	- blockchain: Bitcoin
//	  symbol: BTC
//	- blockchain: FIAT
//	  symbol: MXN-USD
type AssetEntry struct {
	Blockchain string `yaml:"blockchain"`
	Symbol     string `yaml:"symbol"`
}

// LoadAssetsFile reads the optional YAML allow-list. Entries missing either
// field are rejected; an empty file yields no entries.
func LoadAssetsFile(path string) ([]AssetEntry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assets file: %w", err)
	}

	var entries []AssetEntry
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse assets file: %w", err)
	}
	for i, e := range entries {
		if e.Blockchain == "" || e.Symbol == "" {
			return nil, fmt.Errorf("assets file entry %d: blockchain and symbol are required", i)
		}
	}
	return entries, nil
}
