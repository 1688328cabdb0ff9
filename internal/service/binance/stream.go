package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"TradeGate/internal/domain/models"
	drepo "TradeGate/internal/domain/repository"

	"github.com/gorilla/websocket"
)

const defaultWebSocketURL = "wss://stream.binance.com:9443/ws"

// Stream implements a MarketStream over Binance kline WebSocket streams.
// Only closed klines are emitted, so every candle is final.
type Stream struct {
	websocketURL   string
	symbols        []string
	timeframes     []models.Timeframe
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// NewStream creates a Binance MarketStream for the given symbols across all
// supported timeframes.
func NewStream(websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration) drepo.MarketStream {
	if websocketURL == "" {
		websocketURL = defaultWebSocketURL
	}
	return &Stream{
		websocketURL:   websocketURL,
		symbols:        symbols,
		timeframes:     models.AllTimeframes(),
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	s.conn = conn
	s.connected = true
	log.Printf("binance: connected")
	return nil
}

// Subscribe subscribes to kline streams for every symbol and timeframe.
func (s *Stream) Subscribe(ctx context.Context) error {
	if s.conn == nil || !s.connected {
		return fmt.Errorf("binance not connected")
	}
	params := make([]string, 0, len(s.symbols)*len(s.timeframes))
	for _, sym := range s.symbols {
		for _, tf := range s.timeframes {
			params = append(params, fmt.Sprintf("%s@kline_%s", strings.ToLower(sym), tf))
		}
	}
	msg := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": params,
		"id":     1,
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe klines: %w", err)
	}
	log.Printf("binance: subscribed %d streams", len(params))
	return nil
}

type wsKline struct {
	OpenTime int64  `json:"t"`
	Symbol   string `json:"s"`
	Interval string `json:"i"`
	Open     string `json:"o"`
	Close    string `json:"c"`
	High     string `json:"h"`
	Low      string `json:"l"`
	Volume   string `json:"v"`
	Closed   bool   `json:"x"`
}

type wsMessage struct {
	Event string  `json:"e"`
	Kline wsKline `json:"k"`
}

func (k *wsKline) toCandle() (*models.Candle, error) {
	parse := func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
	o, err := parse(k.Open)
	if err != nil {
		return nil, err
	}
	h, err := parse(k.High)
	if err != nil {
		return nil, err
	}
	l, err := parse(k.Low)
	if err != nil {
		return nil, err
	}
	c, err := parse(k.Close)
	if err != nil {
		return nil, err
	}
	v, err := parse(k.Volume)
	if err != nil {
		return nil, err
	}
	return &models.Candle{
		Bucket:    time.UnixMilli(k.OpenTime).UTC(),
		Symbol:    k.Symbol,
		Timeframe: models.Timeframe(k.Interval),
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    v,
	}, nil
}

// Read streams closed candles and errors.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Candle, <-chan error) {
	candles := make(chan *models.Candle, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.conn != nil {
					_ = s.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(candles)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("binance conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-kline frames (subscribe acks etc.)
					continue
				}
				if m.Event != "kline" || !m.Kline.Closed {
					continue
				}
				candle, err := m.Kline.toCandle()
				if err != nil {
					continue
				}
				select {
				case candles <- candle:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return candles, errs
}

// Reconnect closes and reconnects.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool { return s.connected }
