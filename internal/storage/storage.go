package storage

import (
	"math/big"
	"sync/atomic"

	"diabatcher/internal/asset"
)

// CoinInfo is one published asset record. Supply and Price are unsigned
// 128-bit fixed-point integers with twelve fractional digits; consumers
// divide by 10^12 to recover the decimal quantity.
type CoinInfo struct {
	Symbol              string   `json:"symbol"`
	Name                string   `json:"name"`
	Blockchain          string   `json:"blockchain"`
	Supply              *big.Int `json:"supply"`
	LastUpdateTimestamp uint64   `json:"lastUpdateTimestamp"`
	Price               *big.Int `json:"price"`
}

// Key returns the identity the record was fetched under.
func (c CoinInfo) Key() asset.Specifier {
	return asset.Specifier{Blockchain: c.Blockchain, Symbol: c.Symbol}
}

// generation is one immutable snapshot of the published records. It is built
// once inside Replace and never mutated afterwards.
type generation struct {
	byAsset  map[asset.Specifier]CoinInfo
	bySymbol map[string]CoinInfo
}

var emptyGeneration = &generation{}

// CoinInfoStorage holds the latest published snapshot. Replace installs a
// fresh generation with a single pointer swap; readers pin whichever
// generation was current when they loaded the pointer, so lookups never block
// and never observe a mix of two generations.
type CoinInfoStorage struct {
	current atomic.Pointer[generation]
}

func New() *CoinInfoStorage {
	s := &CoinInfoStorage{}
	s.current.Store(emptyGeneration)
	return s
}

// Replace swaps in a whole new snapshot built from currencies. Records
// sharing an identity collapse to the last one in the slice. The store
// expects a single producer; concurrent calls are last-write-wins.
func (s *CoinInfoStorage) Replace(currencies []CoinInfo) {
	g := &generation{
		byAsset:  make(map[asset.Specifier]CoinInfo, len(currencies)),
		bySymbol: make(map[string]CoinInfo, len(currencies)),
	}
	for _, c := range currencies {
		g.byAsset[c.Key()] = c
		g.bySymbol[c.Symbol] = c
	}
	s.current.Store(g)
}

// GetByAssets returns the records for the requested identities, preserving
// request order and dropping keys with no match.
func (s *CoinInfoStorage) GetByAssets(keys []asset.Specifier) []CoinInfo {
	g := s.current.Load()
	out := make([]CoinInfo, 0, len(keys))
	for _, k := range keys {
		if c, ok := g.byAsset[k]; ok {
			out = append(out, c)
		}
	}
	return out
}

// GetBySymbols is the symbol-only lookup used by the comma-separated HTTP
// route. Same ordering and omission rules as GetByAssets.
func (s *CoinInfoStorage) GetBySymbols(symbols []string) []CoinInfo {
	g := s.current.Load()
	out := make([]CoinInfo, 0, len(symbols))
	for _, sym := range symbols {
		if c, ok := g.bySymbol[sym]; ok {
			out = append(out, c)
		}
	}
	return out
}
