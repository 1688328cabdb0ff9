package models

import "errors"

// The evaluation core degrades to conservative defaults on irregular market
// data; only caller contract violations surface as errors.
var (
	// ErrInvalidInput marks non-positive equity, risk, or stop distance.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptySeries marks a timeframe submitted with zero candles.
	ErrEmptySeries = errors.New("empty candle series")
)
