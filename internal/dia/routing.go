package dia

import "strings"

// route classifies a quotation request. The decision is taken once per
// request from the asset's blockchain and symbol tags; tag matching is
// case-insensitive.
type route int

const (
	// routeStandard hits the quotation-by-blockchain-and-address endpoint.
	routeStandard route = iota
	// routeFiatReference answers with the constant USD quotation, no network.
	routeFiatReference
	// routeFiatForeign hits the foreign-exchange endpoint keyed by symbol pair.
	routeFiatForeign
	// routeGraph hits the GraphQL endpoint instead of REST.
	routeGraph
)

const (
	fiatBlockchain    = "FIAT"
	fiatReferencePair = "USD-USD"
	graphBlockchain   = "AMPLITUDE"
	graphSymbol       = "AMPE"
)

func routeFor(a Asset) route {
	switch strings.ToUpper(a.Blockchain) {
	case fiatBlockchain:
		if strings.ToUpper(a.Symbol) == fiatReferencePair {
			return routeFiatReference
		}
		return routeFiatForeign
	case graphBlockchain:
		if strings.ToUpper(a.Symbol) == graphSymbol {
			return routeGraph
		}
	}
	return routeStandard
}
