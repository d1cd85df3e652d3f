package constants

import "time"

const (
	ServiceName = "promofeed"
)

const (
	DefaultHTTPTimeout     = 10 * time.Second
	DefaultRefreshInterval = 30 * time.Second
	ShutdownTimeout        = 5 * time.Second
)

const (
	CacheKeyPrefixFeed = "feed:frame:"
	DefaultTTLSeconds  = 3600
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)

const (
	DefaultStorageKey    = "comment_db.json"
	DefaultStorageRegion = "us-east-1"
)

const (
	FrameHour   = "hour"
	Frame6Hours = "6hours"
	FrameDay    = "day"
	FrameWeek   = "week"
	FrameAll    = "all"
)

const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

const (
	BrokerTypeLog   = "log"
	BrokerTypeKafka = "kafka"
)

const (
	DefaultKafkaTopic   = "promofeed.messages"
	KafkaBatchTimeout   = 10 * time.Millisecond
	KafkaWriteTimeout   = 10 * time.Second
	DefaultExtractDepth = 3
)

// FrameWindows maps a time frame to its look-back window. FrameAll has no cut-off.
var FrameWindows = map[string]time.Duration{
	FrameHour:   time.Hour,
	Frame6Hours: 6 * time.Hour,
	FrameDay:    24 * time.Hour,
	FrameWeek:   7 * 24 * time.Hour,
	FrameAll:    0,
}

func IsValidFrame(frame string) bool {
	_, ok := FrameWindows[frame]
	return ok
}
