package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"TradeGate/internal/domain/models"
	drepo "TradeGate/internal/domain/repository"
	pkghttp "TradeGate/pkg/http"
)

const defaultRestURL = "https://api.binance.com"

// Client fetches spot klines from the Binance public REST API. No API key
// is required for market data.
type Client struct {
	baseURL string
	http    *pkghttp.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultRestURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
	}
}

// kline wire format: [openTime, open, high, low, close, volume, closeTime, ...]
// with prices encoded as strings.
func parseKlines(raw []byte, symbol string, tf models.Timeframe) ([]models.Candle, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("parse klines: %w", err)
	}

	out := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		var openTime int64
		if err := json.Unmarshal(row[0], &openTime); err != nil {
			return nil, fmt.Errorf("parse open time: %w", err)
		}
		vals := make([]float64, 5)
		for i := 0; i < 5; i++ {
			var s string
			if err := json.Unmarshal(row[i+1], &s); err != nil {
				return nil, fmt.Errorf("parse kline field %d: %w", i+1, err)
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("parse kline field %d: %w", i+1, err)
			}
			vals[i] = f
		}
		out = append(out, models.Candle{
			Bucket:    time.UnixMilli(openTime).UTC(),
			Symbol:    symbol,
			Timeframe: tf,
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}
	return out, nil
}

func (c *Client) klines(ctx context.Context, symbol string, tf models.Timeframe, limit int, from, to *time.Time) ([]models.Candle, error) {
	params := map[string][]string{
		"symbol":   {symbol},
		"interval": {string(tf)},
	}
	if limit > 0 {
		params["limit"] = []string{strconv.Itoa(limit)}
	}
	if from != nil {
		params["startTime"] = []string{strconv.FormatInt(from.UnixMilli(), 10)}
	}
	if to != nil {
		params["endTime"] = []string{strconv.FormatInt(to.UnixMilli(), 10)}
	}

	var raw []byte
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.baseURL + "/api/v3/klines",
		QueryParams: params,
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("binance klines: %w", err)
	}
	return parseKlines(raw, symbol, tf)
}

// GetCandles returns candles inside [from, to].
func (c *Client) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf models.Timeframe) ([]models.Candle, error) {
	return c.klines(ctx, symbol, tf, 0, &from, &to)
}

// GetLatestNCandles returns the most recent n candles, oldest first.
func (c *Client) GetLatestNCandles(ctx context.Context, symbol string, n int, tf models.Timeframe) ([]models.Candle, error) {
	return c.klines(ctx, symbol, tf, n, nil, nil)
}

var _ drepo.FeatureStore = (*Client)(nil)
