package broker

import (
	"context"

	"promofeed/internal/constants"
	"promofeed/internal/logger"
	"promofeed/pkg/metrics"
	"promofeed/pkg/models"
)

// LogPublisher only logs records. It is the default when no broker is configured.
type LogPublisher struct {
	logger logger.Logger
}

func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{logger: log}
}

func (p *LogPublisher) Publish(ctx context.Context, msg models.MessageRecord) error {
	p.logger.InfowCtx(ctx, "New message",
		"id", msg.ID,
		"code", msg.Code,
		"severity", msg.Severity,
		"timestamp", msg.Timestamp,
	)
	metrics.IncPublished(constants.BrokerTypeLog, "success")
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
