package market

import (
	"fmt"
	"strings"
)

// Pair identifies an ordered currency pair (base/quote).
type Pair struct {
	Base  string
	Quote string
}

// ParsePair parses a "EUR/USD" style symbol.
func ParsePair(symbol string) (Pair, error) {
	parts := strings.Split(strings.TrimSpace(symbol), "/")
	if len(parts) != 2 {
		return Pair{}, fmt.Errorf("invalid pair symbol %q", symbol)
	}
	base := strings.ToUpper(strings.TrimSpace(parts[0]))
	quote := strings.ToUpper(strings.TrimSpace(parts[1]))
	if len(base) != 3 || len(quote) != 3 {
		return Pair{}, fmt.Errorf("invalid pair symbol %q", symbol)
	}
	return Pair{Base: base, Quote: quote}, nil
}

// ParsePairs parses a list of symbols, rejecting duplicates.
func ParsePairs(symbols []string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(symbols))
	seen := make(map[Pair]struct{}, len(symbols))
	for _, symbol := range symbols {
		pair, err := ParsePair(symbol)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[pair]; dup {
			return nil, fmt.Errorf("duplicate pair %s", pair)
		}
		seen[pair] = struct{}{}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// String renders the provider symbol form, e.g. "EUR/USD".
func (p Pair) String() string {
	return p.Base + "/" + p.Quote
}

// DefaultPairSymbols lists the 28 monitored majors, minors, and crosses.
var DefaultPairSymbols = []string{
	"EUR/USD", "GBP/USD", "USD/JPY", "USD/CHF", "AUD/USD", "USD/CAD", "NZD/USD",
	"EUR/GBP", "EUR/JPY", "EUR/CHF", "EUR/AUD", "EUR/CAD", "EUR/NZD",
	"GBP/JPY", "GBP/CHF", "GBP/AUD", "GBP/CAD", "GBP/NZD",
	"CHF/JPY", "AUD/JPY", "CAD/JPY", "NZD/JPY",
	"AUD/CHF", "AUD/CAD", "AUD/NZD",
	"CAD/CHF", "NZD/CHF", "NZD/CAD",
}
