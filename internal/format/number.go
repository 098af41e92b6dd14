// Package format renders numbers for the dashboard metric cards.
package format

import (
	"fmt"
	"strings"
)

// Number scales value into thousands ("mil") or millions ("milhões") and
// prefixes it, e.g. Number(1534200, "R$") == "R$ 1.53 milhões".
func Number(value float64, prefix string) string {
	for _, unit := range []string{"", "mil"} {
		if value < 1000 {
			return join(prefix, fmt.Sprintf("%.2f", value), unit)
		}
		value /= 1000
	}
	return join(prefix, fmt.Sprintf("%.2f", value), "milhões")
}

func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
