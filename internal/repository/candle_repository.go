package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/domain/repository"
	pkgkafka "TradeGate/pkg/kafka"
)

// tableForTF maps a timeframe to its candle table.
func tableForTF(database string, tf models.Timeframe) (string, error) {
	switch tf {
	case models.TF1m:
		return database + ".candles_1m", nil
	case models.TF5m:
		return database + ".candles_5m", nil
	case models.TF15m:
		return database + ".candles_15m", nil
	default:
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
}

// ClickHouseCandleStorage implements Storage for ClickHouse candle tables.
type ClickHouseCandleStorage struct {
	db       *sql.DB
	database string
}

// NewClickHouseCandleStorage creates ClickHouse candle storage.
func NewClickHouseCandleStorage(db *sql.DB, database string) repository.Storage {
	return &ClickHouseCandleStorage{db: db, database: database}
}

func (s *ClickHouseCandleStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseCandleStorage) Store(ctx context.Context, c *models.Candle) error {
	table, err := tableForTF(s.database, c.Timeframe)
	if err != nil {
		return err
	}
	q := fmt.Sprintf("INSERT INTO %s (bucket, symbol, open, high, low, close, vol) VALUES (?, ?, ?, ?, ?, ?, ?)", table)
	_, err = s.db.ExecContext(ctx, q,
		c.Bucket,
		c.Symbol,
		c.Open,
		c.High,
		c.Low,
		c.Close,
		c.Volume,
	)
	return err
}

func (s *ClickHouseCandleStorage) StoreBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	// Group by timeframe, batch insert with multi-row VALUES to reduce
	// round-trips. Chunk size tuned to 2000 rows per batch.
	byTF := make(map[models.Timeframe][]*models.Candle)
	for _, c := range candles {
		if c == nil || c.Symbol == "" {
			continue
		}
		byTF[c.Timeframe] = append(byTF[c.Timeframe], c)
	}

	const chunkSize = 2000
	for tf, group := range byTF {
		table, err := tableForTF(s.database, tf)
		if err != nil {
			return err
		}
		for start := 0; start < len(group); start += chunkSize {
			end := start + chunkSize
			if end > len(group) {
				end = len(group)
			}
			values := make([]string, 0, end-start)
			args := make([]interface{}, 0, (end-start)*7)
			for _, c := range group[start:end] {
				values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
				args = append(args, c.Bucket, c.Symbol, c.Open, c.High, c.Low, c.Close, c.Volume)
			}
			q := fmt.Sprintf("INSERT INTO %s (bucket, symbol, open, high, low, close, vol) VALUES %s", table, strings.Join(values, ","))
			if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *ClickHouseCandleStorage) Query(ctx context.Context, symbol string, from, to time.Time, tf models.Timeframe, limit int) ([]*models.Candle, error) {
	table, err := tableForTF(s.database, tf)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT bucket, symbol, open, high, low, close, vol FROM %s WHERE symbol = ? AND bucket >= ? AND bucket <= ? ORDER BY bucket DESC LIMIT ?", table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candles []*models.Candle
	for rows.Next() {
		c := models.Candle{Timeframe: tf}
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		candles = append(candles, &c)
	}
	return candles, rows.Err()
}

func (s *ClickHouseCandleStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseCandleStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaCandlePublisher implements Publisher for Kafka.
type KafkaCandlePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaCandlePublisher creates Kafka publisher.
func NewKafkaCandlePublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaCandlePublisher{producer: producer, topic: topic}
}

func candlePayload(c *models.Candle) map[string]interface{} {
	return map[string]interface{}{
		"symbol": c.Symbol,
		"tf":     string(c.Timeframe),
		"t":      c.Bucket.Unix(),
		"o":      c.Open,
		"h":      c.High,
		"l":      c.Low,
		"c":      c.Close,
		"v":      c.Volume,
	}
}

func (p *KafkaCandlePublisher) Publish(ctx context.Context, c *models.Candle) error {
	return p.producer.Publish(ctx, p.topic, []byte(c.Symbol), candlePayload(c))
}

func (p *KafkaCandlePublisher) PublishBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(candles))
	for i, c := range candles {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(c.Symbol),
			Value: candlePayload(c),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaCandlePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
