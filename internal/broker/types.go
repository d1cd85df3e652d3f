package broker

import (
	"context"

	"promofeed/pkg/models"
)

// Publisher announces newly extracted message records to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, msg models.MessageRecord) error
	Close() error
}
