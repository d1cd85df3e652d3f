package broker

import (
	"fmt"

	"promofeed/internal/config"
	"promofeed/internal/constants"
	"promofeed/internal/logger"
)

func NewPublisher(cfg config.BrokerConfig, log logger.Logger) (Publisher, error) {
	switch cfg.Type {
	case constants.BrokerTypeKafka:
		return NewKafkaPublisher(cfg.Kafka, log), nil
	case constants.BrokerTypeLog, "":
		return NewLogPublisher(log), nil
	default:
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
}
