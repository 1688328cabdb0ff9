package repository

import (
	"context"
	"time"

	"TradeGate/internal/domain/models"
)

// FeatureStore provides read-only access to candle history for the gate.
type FeatureStore interface {
	GetCandles(ctx context.Context, symbol string, from, to time.Time, tf models.Timeframe) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf models.Timeframe) ([]models.Candle, error)
}
