package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Cents is an amount in minor currency units. It marshals to JSON as a
// decimal number of major units, so 40500 becomes 405 and 40450 becomes 404.5.
type Cents int64

func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole, frac := v/100, v%100
	switch {
	case frac == 0:
		return sign + strconv.FormatInt(whole, 10)
	case frac%10 == 0:
		return fmt.Sprintf("%s%d.%d", sign, whole, frac/10)
	default:
		return fmt.Sprintf("%s%d.%02d", sign, whole, frac)
	}
}

func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON reads a decimal amount of major units with at most two
// fractional digits.
func (c *Cents) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parse converts "404.5" style major units into Cents.
func Parse(raw string) (Cents, error) {
	neg := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")
	whole, frac, hasFrac := strings.Cut(raw, ".")
	if whole == "" || (hasFrac && (frac == "" || len(frac) > 2)) {
		return 0, fmt.Errorf("money: invalid amount %q", raw)
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q: %w", raw, err)
	}
	var minor int64
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}
		if minor, err = strconv.ParseInt(frac, 10, 64); err != nil || minor < 0 {
			return 0, fmt.Errorf("money: invalid amount %q", raw)
		}
	}
	total := units*100 + minor
	if neg {
		total = -total
	}
	return Cents(total), nil
}

// PercentOf returns round_half_up(c * pct / 100). pct is resolved to
// hundredths of a percent before the integer math.
func (c Cents) PercentOf(pct float64) Cents {
	if c <= 0 || pct <= 0 {
		return 0
	}
	basisPoints := int64(pct*100 + 0.5)
	return Cents((int64(c)*basisPoints + 5000) / 10000)
}
