package pricing

import (
	"math"

	apperrors "optionscout/internal/errors"
)

const (
	ivLo      = 0.005
	ivHi      = 5.0
	ivTol     = 1e-6
	ivMaxIter = 100
)

// ImpliedVol backs the implied volatility out of an observed option price by
// bisection on Black-Scholes. The search bracket is [0.5%, 500%] annualized.
// Returns ErrDegenerateInput when the price sits outside the arbitrage-free
// bounds of the bracket or the inputs make pricing meaningless.
func ImpliedVol(price float64, in Input) (float64, error) {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, apperrors.ErrDegenerateInput
	}
	if in.Spot <= 0 || in.Strike <= 0 || in.YearsToExp <= eps {
		return 0, apperrors.ErrDegenerateInput
	}

	priceAt := func(sigma float64) float64 {
		in.ImpliedVol = sigma
		return PriceGreeks(in).Price
	}

	lo, hi := ivLo, ivHi
	pLo, pHi := priceAt(lo), priceAt(hi)
	if price < pLo || price > pHi {
		return 0, apperrors.ErrDegenerateInput
	}

	for i := 0; i < ivMaxIter; i++ {
		mid := (lo + hi) / 2
		pMid := priceAt(mid)
		if math.Abs(pMid-price) < ivTol || (hi-lo)/2 < ivTol {
			return mid, nil
		}
		if pMid < price {
			lo = mid
		} else {
			hi = mid
		}
	}

	return (lo + hi) / 2, nil
}
