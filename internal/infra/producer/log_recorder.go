package producer

import (
	"context"
	"encoding/json"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/rs/zerolog"
)

// LogRecorder 沒有設定 kafka 時使用, 稽核事件直接寫 log
type LogRecorder struct {
	logger *zerolog.Logger
}

func NewLogRecorder(logger *zerolog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(ctx context.Context, kind model.AuditKind, payload any) {
	evt := model.NewAuditEvent(kind, payload)
	raw, err := json.Marshal(evt.Payload)
	if err != nil {
		r.logger.Error().Err(err).Str("kind", string(kind)).Msg("failed to marshal audit event")
		return
	}
	r.logger.Info().
		Str("event_id", evt.EventID).
		Str("kind", string(kind)).
		RawJSON("payload", raw).
		Msg("audit")
}

func (r *LogRecorder) Close() error {
	return nil
}
