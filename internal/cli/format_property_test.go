package cli

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any amount, FormatIndianCurrency should:
// 1. Start with ₹ (or -₹ for negative)
// 2. Have exactly 2 decimal places
// 3. Group digits Indian-style (3 from the right, then groups of 2)
// 4. Preserve the numeric value when parsed back
func TestIndianCurrencyFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatIndianCurrency produces valid Indian format", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatIndianCurrency(amount)

			if amount >= 0 {
				if !strings.HasPrefix(formatted, "₹") {
					t.Logf("expected ₹ prefix for %f, got %s", amount, formatted)
					return false
				}
			} else if !strings.HasPrefix(formatted, "-₹") {
				t.Logf("expected -₹ prefix for %f, got %s", amount, formatted)
				return false
			}

			parts := strings.Split(formatted, ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				t.Logf("expected two decimal places for %f, got %s", amount, formatted)
				return false
			}

			// Round trip: strip symbol and separators, parse back.
			numeric := strings.NewReplacer("₹", "", ",", "").Replace(formatted)
			parsed, err := strconv.ParseFloat(numeric, 64)
			if err != nil {
				t.Logf("parse failure for %s: %v", formatted, err)
				return false
			}
			return math.Abs(parsed-amount) < 0.005+math.Abs(amount)*1e-12
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("digit groups follow the Indian pattern", prop.ForAll(
		func(n int64) bool {
			s := strconv.FormatInt(n, 10)
			grouped := formatIndianNumber(s)

			if strings.ReplaceAll(grouped, ",", "") != s {
				return false
			}

			groups := strings.Split(grouped, ",")
			// Last group is always up to 3 digits, all earlier groups exactly 2.
			if len(groups[len(groups)-1]) > 3 {
				return false
			}
			for i := 1; i < len(groups)-1; i++ {
				if len(groups[i]) != 2 {
					return false
				}
			}
			return true
		},
		gen.Int64Range(0, math.MaxInt64),
	))

	properties.TestingRun(t)
}

func TestFormatPercent(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{12.5, "+12.50%"},
		{-3.2, "-3.20%"},
		{0, "0.00%"},
	}
	for _, tc := range cases {
		if got := FormatPercent(tc.in); got != tc.want {
			t.Errorf("FormatPercent(%v) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestFormatOI(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{500, "500"},
		{2500, "2.5 K"},
		{350000, "3.50 L"},
		{25000000, "2.50 Cr"},
	}
	for _, tc := range cases {
		if got := FormatOI(tc.in); got != tc.want {
			t.Errorf("FormatOI(%d) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
