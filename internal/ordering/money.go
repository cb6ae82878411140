package ordering

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders d the way es-AR shoppers read prices: "." groups
// thousands, "," separates up to two decimals, whole amounts have none.
func FormatAmount(d decimal.Decimal) string {
	neg := d.IsNegative()
	d = d.Abs().Round(2)
	whole := d.Truncate(0)
	out := groupThousands(whole.String())
	if frac := d.Sub(whole); !frac.IsZero() {
		digits := strings.TrimRight(frac.StringFixed(2)[2:], "0")
		out += "," + digits
	}
	if neg {
		return "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
