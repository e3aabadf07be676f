package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"optionscout/internal/config"
	apperrors "optionscout/internal/errors"
	"optionscout/internal/logging"
	"optionscout/internal/models"
	"optionscout/pkg/utils"
)

// Kite quote batching stays well under the API's 500-instrument cap.
const quoteBatchSize = 200

// Kite serves price history and option chains from the Zerodha Kite Connect
// API. It requires a pre-issued access token; the interactive login flow is
// out of scope here.
type Kite struct {
	client *kiteconnect.Client
	retry  utils.RetryConfig
	log    zerolog.Logger

	mu     sync.RWMutex
	tokens map[string]int                     // "EXCHANGE:SYMBOL" -> instrument token
	nfo    map[string][]kiteconnect.Instrument // underlying name -> option instruments
}

// NewKite builds a Kite provider from stored credentials.
func NewKite(creds config.KiteCredentials, logger zerolog.Logger) (*Kite, error) {
	if creds.APIKey == "" || creds.AccessToken == "" {
		return nil, apperrors.ErrNotAuthenticated
	}

	client := kiteconnect.New(creds.APIKey)
	client.SetAccessToken(creds.AccessToken)

	return &Kite{
		client: client,
		retry:  utils.DefaultRetryConfig(),
		log:    logger,
		tokens: make(map[string]int),
		nfo:    make(map[string][]kiteconnect.Instrument),
	}, nil
}

// fetch runs one API call through the retry policy and logs its outcome.
func fetch[T any](ctx context.Context, k *Kite, endpoint string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := utils.RetryWithResult(ctx, k.retry, fn)
	logging.LogAPICall(k.log, "GET", endpoint, time.Since(start), err)
	return result, err
}

// PriceHistory fetches historical bars for an NSE equity symbol.
func (k *Kite) PriceHistory(ctx context.Context, symbol, interval string, lookbackDays int) (models.PriceSeries, error) {
	token, err := k.instrumentToken(ctx, "NSE", symbol)
	if err != nil {
		return models.PriceSeries{}, err
	}

	to := time.Now()
	from := to.AddDate(0, 0, -lookbackDays)

	data, err := fetch(ctx, k, "historical/"+symbol, func() ([]kiteconnect.HistoricalData, error) {
		return k.client.GetHistoricalData(token, kiteInterval(interval), from, to, false, false)
	})
	if err != nil {
		return models.PriceSeries{}, apperrors.Wrapf(err, "historical data for %s", symbol)
	}
	if len(data) == 0 {
		return models.PriceSeries{}, apperrors.NewDataError("history", symbol, "empty response", apperrors.ErrNoData)
	}

	candles := make([]models.Candle, len(data))
	for i, d := range data {
		candles[i] = models.Candle{
			Timestamp: d.Date.Time,
			Open:      d.Open,
			High:      d.High,
			Low:       d.Low,
			Close:     d.Close,
			Volume:    int64(d.Volume),
		}
	}

	return models.PriceSeries{
		Symbol:   symbol,
		Interval: intervalDuration(interval),
		Candles:  candles,
	}, nil
}

// OptionChain pulls the full NFO option chain for an underlying along with
// its NSE spot price. Quotes are fetched in batches; rows without a usable
// two-sided market still come back and are left for the sanitizer to judge.
func (k *Kite) OptionChain(ctx context.Context, symbol string) (ChainSnapshot, error) {
	spot, err := k.spotPrice(ctx, symbol)
	if err != nil {
		return ChainSnapshot{}, err
	}

	instruments, err := k.optionInstruments(ctx, symbol)
	if err != nil {
		return ChainSnapshot{}, err
	}
	if len(instruments) == 0 {
		return ChainSnapshot{}, apperrors.NewDataError("chain", symbol, "no option instruments", apperrors.ErrSymbolNotFound)
	}

	rows := make([]models.OptionContract, 0, len(instruments))
	for start := 0; start < len(instruments); start += quoteBatchSize {
		end := start + quoteBatchSize
		if end > len(instruments) {
			end = len(instruments)
		}
		batch := instruments[start:end]

		ids := make([]string, len(batch))
		for i, inst := range batch {
			ids[i] = "NFO:" + inst.Tradingsymbol
		}

		quotes, err := fetch(ctx, k, "quote/"+symbol, func() (kiteconnect.Quote, error) {
			return k.client.GetQuote(ids...)
		})
		if err != nil {
			return ChainSnapshot{}, apperrors.Wrapf(err, "option quotes for %s", symbol)
		}

		for i, inst := range batch {
			q, ok := quotes[ids[i]]
			if !ok {
				continue
			}

			var bid, ask float64
			if len(q.Depth.Buy) > 0 {
				bid = q.Depth.Buy[0].Price
			}
			if len(q.Depth.Sell) > 0 {
				ask = q.Depth.Sell[0].Price
			}

			optType := models.OptionCall
			if inst.InstrumentType == "PE" {
				optType = models.OptionPut
			}

			rows = append(rows, models.OptionContract{
				Symbol:       inst.Tradingsymbol,
				Expiry:       inst.Expiry.Time,
				Type:         optType,
				Strike:       inst.StrikePrice,
				Bid:          bid,
				Ask:          ask,
				Mid:          (bid + ask) / 2,
				OpenInterest: int64(q.OI),
				Volume:       int64(q.Volume),
			})
		}
	}

	return ChainSnapshot{
		Symbol:    symbol,
		Spot:      spot,
		Rows:      rows,
		FetchedAt: time.Now(),
	}, nil
}

func (k *Kite) spotPrice(ctx context.Context, symbol string) (float64, error) {
	id := "NSE:" + symbol
	quotes, err := fetch(ctx, k, "quote/"+id, func() (kiteconnect.Quote, error) {
		return k.client.GetQuote(id)
	})
	if err != nil {
		return 0, apperrors.Wrapf(err, "spot quote for %s", symbol)
	}
	q, ok := quotes[id]
	if !ok || q.LastPrice <= 0 {
		return 0, apperrors.Wrapf(apperrors.ErrSymbolNotFound, "no spot price for %s", symbol)
	}
	return q.LastPrice, nil
}

func (k *Kite) instrumentToken(ctx context.Context, exchange, symbol string) (int, error) {
	key := exchange + ":" + symbol

	k.mu.RLock()
	token, ok := k.tokens[key]
	k.mu.RUnlock()
	if ok {
		return token, nil
	}

	instruments, err := fetch(ctx, k, "instruments/"+exchange, func() (kiteconnect.Instruments, error) {
		return k.client.GetInstrumentsByExchange(exchange)
	})
	if err != nil {
		return 0, apperrors.Wrapf(err, "instrument dump for %s", exchange)
	}

	k.mu.Lock()
	for _, inst := range instruments {
		k.tokens[fmt.Sprintf("%s:%s", inst.Exchange, inst.Tradingsymbol)] = inst.InstrumentToken
	}
	token, ok = k.tokens[key]
	k.mu.Unlock()

	if !ok {
		return 0, apperrors.Wrapf(apperrors.ErrSymbolNotFound, "instrument %s", key)
	}
	return token, nil
}

func (k *Kite) optionInstruments(ctx context.Context, symbol string) ([]kiteconnect.Instrument, error) {
	k.mu.RLock()
	cached, ok := k.nfo[symbol]
	k.mu.RUnlock()
	if ok {
		return cached, nil
	}

	instruments, err := fetch(ctx, k, "instruments/NFO", func() (kiteconnect.Instruments, error) {
		return k.client.GetInstrumentsByExchange("NFO")
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, "NFO instrument dump")
	}

	var filtered []kiteconnect.Instrument
	for _, inst := range instruments {
		if inst.Name != symbol {
			continue
		}
		if inst.InstrumentType != "CE" && inst.InstrumentType != "PE" {
			continue
		}
		filtered = append(filtered, inst)
	}

	k.mu.Lock()
	k.nfo[symbol] = filtered
	k.mu.Unlock()

	return filtered, nil
}

// kiteInterval maps friendly interval names onto the API's identifiers;
// Kite-native names pass through unchanged.
func kiteInterval(interval string) string {
	switch interval {
	case "1min":
		return "minute"
	case "5min":
		return "5minute"
	case "15min":
		return "15minute"
	case "30min":
		return "30minute"
	case "1hour":
		return "60minute"
	case "1day":
		return "day"
	case "minute", "5minute", "15minute", "30minute", "60minute", "day":
		return interval
	default:
		return "60minute"
	}
}

func intervalDuration(interval string) time.Duration {
	switch kiteInterval(interval) {
	case "minute":
		return time.Minute
	case "5minute":
		return 5 * time.Minute
	case "15minute":
		return 15 * time.Minute
	case "30minute":
		return 30 * time.Minute
	case "60minute":
		return time.Hour
	case "day":
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

var _ MarketData = (*Kite)(nil)
