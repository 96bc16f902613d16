package mission

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NotAvailable is displayed for any value that cannot be computed.
const NotAvailable = "N/A"

const (
	clockLayout    = "03:04 PM"
	dateTimeLayout = "2006-01-02 03:04 PM"
)

// FormatUSD renders d as "$1,234.56". Negative amounts render as "-$3.50".
func FormatUSD(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	out := "$" + groupThousands(intPart) + "." + frac
	if d.IsNegative() && fixed != "0.00" {
		return "-" + out
	}
	return out
}

// FormatSignedUSD renders d with an explicit sign: "+$12.00" for zero and
// positive amounts, "-$3.50" otherwise.
func FormatSignedUSD(d decimal.Decimal) string {
	s := FormatUSD(d)
	if strings.HasPrefix(s, "-") {
		return s
	}
	return "+" + s
}

// FormatPrice renders a reference price as configured on the exchange,
// without rounding, e.g. "$120.50".
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.String()
}

// FormatAge renders the creation time of an order: the clock time when it
// falls on the same local day as now, otherwise the full date and time.
func FormatAge(created, now time.Time, loc *time.Location) string {
	if created.IsZero() {
		return NotAvailable
	}
	if loc == nil {
		loc = time.Local
	}
	c := created.In(loc)
	n := now.In(loc)
	if c.Year() == n.Year() && c.YearDay() == n.YearDay() {
		return c.Format(clockLayout)
	}
	return c.Format(dateTimeLayout)
}

// FormatTimestamp renders a fill time in the given location, or N/A.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return NotAvailable
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dateTimeLayout)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
