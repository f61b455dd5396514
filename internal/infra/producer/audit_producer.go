package producer

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

var ErrProducerClosed = errors.New("audit producer is closed")

// messageWriter *kafka.Writer 的子集, 測試可替換
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type AuditConfig struct {
	Brokers       []string
	Topic         string
	WriteTimeout  time.Duration
	RetryAttempts int
}

/*
稽核事件寫到 kafka
fire-and-forget: Record 不回傳錯誤, 寫入失敗只記 log, 不影響已經 commit 的訂單
key: event kind, header 帶 event_type 讓消費者不用解 payload 就能分流
*/
type AuditProducer struct {
	writer messageWriter
	cfg    AuditConfig
	logger *zerolog.Logger
	// mu 保護 closed, 並確保 pending.Add 不會和 Close 的 Wait 重疊
	mu      sync.RWMutex
	closed  bool
	pending sync.WaitGroup
}

func NewAuditProducer(cfg AuditConfig, logger *zerolog.Logger) *AuditProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  1, // 重試由 produce 控制, 避免次數相乘
		Transport: &kafka.Transport{
			Dial: func(ctx context.Context, network string, address string) (net.Conn, error) {
				dialer := &kafka.Dialer{
					Timeout:   10 * time.Second,
					DualStack: true,
					KeepAlive: 30 * time.Second,
				}
				return dialer.DialContext(ctx, network, address)
			},
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error().Msgf("kafka audit writer: "+msg, args...)
		}),
		Compression: kafka.Snappy,
	}
	return newAuditProducer(writer, cfg, logger)
}

func newAuditProducer(writer messageWriter, cfg AuditConfig, logger *zerolog.Logger) *AuditProducer {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &AuditProducer{writer: writer, cfg: cfg, logger: logger}
}

func (p *AuditProducer) Record(ctx context.Context, kind model.AuditKind, payload any) {
	evt := model.NewAuditEvent(kind, payload)
	msg, err := prepareEventMessage(evt)
	if err != nil {
		p.logger.Error().Err(err).Str("kind", string(kind)).Msg("failed to marshal audit event")
		return
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		p.logger.Warn().Str("kind", string(kind)).Err(ErrProducerClosed).Msg("audit event dropped")
		return
	}
	p.pending.Add(1)
	p.mu.RUnlock()

	go func() {
		defer p.pending.Done()
		if err := p.produce(context.WithoutCancel(ctx), msg); err != nil {
			p.logger.Error().
				Err(err).
				Str("event_id", evt.EventID).
				Str("kind", string(kind)).
				Msg("failed to produce audit event")
		}
	}()
}

func (p *AuditProducer) produce(ctx context.Context, msg kafka.Message) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.WriteTimeout)
	defer cancel()

	var err error
	for attempt := 0; attempt <= p.cfg.RetryAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = p.writer.WriteMessages(ctx, msg)
		if err == nil {
			return nil
		}
		if !isTemporary(err) {
			break
		}
	}
	return err
}

// Close 等待送出中的事件後關閉 writer
func (p *AuditProducer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.pending.Wait()
	return p.writer.Close()
}

func prepareEventMessage(evt *model.AuditEvent) (kafka.Message, error) {
	value, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(evt.Kind),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Kind)},
			{Key: "event_id", Value: []byte(evt.EventID)},
		},
		Time: evt.CreatedAt,
	}, nil
}

// isTemporary WriteErrors 只有在每一筆錯誤都可以重試時才算
func isTemporary(err error) bool {
	var werrs kafka.WriteErrors
	if errors.As(err, &werrs) {
		for _, e := range werrs {
			if e != nil && !isTemporary(e) {
				return false
			}
		}
		return werrs.Count() > 0
	}
	var kerr kafka.Error
	if errors.As(err, &kerr) {
		return kerr.Temporary()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
