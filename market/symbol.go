package market

import "strings"

// The gateway reports share classes with a space ("BRK B") while the rest
// of the pipeline keys everything by the dotted form ("BRK.B").

// Normalize maps a gateway-reported symbol to its canonical dotted form.
// Canonical input passes through unchanged.
func Normalize(sym string) string {
	sym = strings.TrimSpace(sym)
	return strings.ReplaceAll(sym, " ", ".")
}

// BrokerSymbol maps a canonical symbol back to the gateway's space-separated
// share-class form. Only a single alphabetic character after the final dot is
// treated as a share class; exchange-style suffixes ("X.TO") pass through.
func BrokerSymbol(sym string) string {
	i := strings.LastIndex(sym, ".")
	if i <= 0 || i != len(sym)-2 {
		return sym
	}
	c := sym[len(sym)-1]
	if !('A' <= c && c <= 'Z' || 'a' <= c && c <= 'z') {
		return sym
	}
	return sym[:i] + " " + sym[i+1:]
}
