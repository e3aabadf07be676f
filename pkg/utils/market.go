package utils

import "time"

// IndiaLocation is the timezone for Indian markets.
var IndiaLocation *time.Location

func init() {
	var err error
	IndiaLocation, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback to UTC+5:30
		IndiaLocation = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// MarketSession describes the NSE trading session at a point in time.
type MarketSession string

const (
	SessionClosed  MarketSession = "closed"
	SessionPreOpen MarketSession = "pre_open"
	SessionOpen    MarketSession = "open"
)

// MarketSessionAt returns the NSE session for the given instant.
// Regular session runs 9:15 to 15:30 IST, pre-open 9:00 to 9:15.
// Exchange holidays are not tracked; only weekends close the market.
func MarketSessionAt(t time.Time) MarketSession {
	ist := t.In(IndiaLocation)

	if ist.Weekday() == time.Saturday || ist.Weekday() == time.Sunday {
		return SessionClosed
	}

	minutes := ist.Hour()*60 + ist.Minute()

	switch {
	case minutes >= 540 && minutes < 555:
		return SessionPreOpen
	case minutes >= 555 && minutes < 930:
		return SessionOpen
	default:
		return SessionClosed
	}
}

// IsMarketOpenAt reports whether the regular session is trading at t.
func IsMarketOpenAt(t time.Time) bool {
	return MarketSessionAt(t) == SessionOpen
}

// NextMarketOpen returns the first regular-session open at or after t.
func NextMarketOpen(t time.Time) time.Time {
	ist := t.In(IndiaLocation)

	next := time.Date(ist.Year(), ist.Month(), ist.Day(), 9, 15, 0, 0, IndiaLocation)
	if ist.After(next) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
