package asset

import (
	"fmt"
	"strings"
)

// Specifier identifies an asset by its blockchain and symbol. Matching is
// exact and case-sensitive; callers normalize case before construction.
type Specifier struct {
	Blockchain string `json:"blockchain" yaml:"blockchain"`
	Symbol     string `json:"symbol" yaml:"symbol"`
}

func (s Specifier) String() string { return s.Blockchain + ":" + s.Symbol }

// ParseSpecifier parses the "blockchain:symbol" form used on the command line
// and in config files.
func ParseSpecifier(s string) (Specifier, error) {
	blockchain, symbol, ok := strings.Cut(s, ":")
	blockchain = strings.TrimSpace(blockchain)
	symbol = strings.TrimSpace(symbol)
	if !ok || blockchain == "" || symbol == "" {
		return Specifier{}, fmt.Errorf("malformed asset %q, want blockchain:symbol", s)
	}
	return Specifier{Blockchain: blockchain, Symbol: symbol}, nil
}

// Set is an allow-set of specifiers. A nil Set means no restriction.
type Set map[Specifier]struct{}

func NewSet(specs ...Specifier) Set {
	set := make(Set, len(specs))
	for _, s := range specs {
		set[s] = struct{}{}
	}
	return set
}

func (s Set) Add(a Specifier) { s[a] = struct{}{} }

func (s Set) Contains(a Specifier) bool {
	_, ok := s[a]
	return ok
}

// Selected reports whether a discovered asset is in scope. A nil allow-set
// selects every asset; a non-nil set selects exact matches only.
func Selected(a Specifier, allow Set) bool {
	if allow == nil {
		return true
	}
	return allow.Contains(a)
}
