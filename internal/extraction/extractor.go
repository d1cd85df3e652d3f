package extraction

import (
	"fmt"
	"strings"
	"time"

	"promofeed/internal/constants"
	"promofeed/internal/logger"
	"promofeed/pkg/idgen"
	"promofeed/pkg/models"
	"promofeed/pkg/tolerantjson"
)

const (
	unknownCode        = "UNKNOWN"
	noValidMessages    = "No valid messages found in response"
	singleMessageFound = "Found 1 new message"
)

// Observer is told the classification of the outermost body and the number
// of records produced, once per Extract call.
type Observer func(kind string, messages int)

type Option func(*Extractor)

func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

func WithIDGenerator(gen idgen.Generator) Option {
	return func(e *Extractor) { e.newID = gen }
}

// WithMaxDepth bounds how many times a string body may be decoded and
// re-classified. Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(e *Extractor) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

func WithDecoder(d *tolerantjson.Decoder) Option {
	return func(e *Extractor) { e.decoder = d }
}

func WithLogger(log logger.Logger) Option {
	return func(e *Extractor) { e.logger = log }
}

func WithObserver(obs Observer) Option {
	return func(e *Extractor) { e.observer = obs }
}

// Extractor turns upstream envelopes into message records. It holds no
// mutable state and is safe for concurrent use.
type Extractor struct {
	now      func() time.Time
	newID    idgen.Generator
	maxDepth int
	decoder  *tolerantjson.Decoder
	logger   logger.Logger
	observer Observer
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		now:      time.Now,
		newID:    idgen.UUID(),
		maxDepth: constants.DefaultExtractDepth,
		decoder:  tolerantjson.NewDecoder(),
		logger:   logger.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract never fails: every undecodable or unexpected shape degrades to an
// empty result with an explanatory message.
func (e *Extractor) Extract(env models.RawEnvelope) models.ParsedResult {
	body := Classify(env)
	result := e.extract(env.StatusCode, body, e.now(), 0)
	if e.observer != nil {
		e.observer(body.Kind(), len(result.Messages))
	}
	return result
}

// now is read once per extraction so every record in a batch shares it and
// a stable newest-first sort keeps source order.
func (e *Extractor) extract(statusCode int, body Body, now time.Time, depth int) models.ParsedResult {
	switch b := body.(type) {
	case StatusError:
		return empty(fmt.Sprintf("API returned status code: %d", b.Code))
	case StringBody:
		return e.extractString(statusCode, b.Text, now, depth)
	case ArrayBody:
		return e.extractArray(b.Items, now)
	case ObjectBody:
		return models.ParsedResult{
			Messages:       []models.MessageRecord{e.record(b.Fields, now)},
			HasNewMessages: true,
			Message:        singleMessageFound,
		}
	default:
		return empty(noValidMessages)
	}
}

func (e *Extractor) extractString(statusCode int, text string, now time.Time, depth int) models.ParsedResult {
	if decoded, err := tolerantjson.Unmarshal(text); err == nil {
		if s, ok := decoded.(string); ok && containsNoNewComments(s) {
			return empty(s)
		}
		return e.substitute(statusCode, text, decoded, now, depth)
	}

	if models.ContainsSentinel(text) {
		return empty(text)
	}

	decoded, err := e.decoder.Decode(text)
	if err != nil {
		e.logger.Debugw("String body is not decodable, returning it as text", "error", err)
		return empty(text)
	}
	return e.substitute(statusCode, text, decoded, now, depth)
}

// substitute re-classifies {statusCode, decoded}. At the depth limit the
// current text is returned as the message instead.
func (e *Extractor) substitute(statusCode int, text string, decoded interface{}, now time.Time, depth int) models.ParsedResult {
	if depth+1 > e.maxDepth {
		e.logger.Warnw("String body nesting exceeds limit", "max_depth", e.maxDepth)
		return empty(text)
	}
	return e.extract(statusCode, Classify(models.RawEnvelope{StatusCode: statusCode, Body: decoded}), now, depth+1)
}

func (e *Extractor) extractArray(items []interface{}, now time.Time) models.ParsedResult {
	messages := make([]models.MessageRecord, 0, len(items))
	for _, item := range items {
		messages = append(messages, e.record(e.itemFields(item), now))
	}

	if len(messages) == 0 {
		return models.ParsedResult{Messages: messages, Message: models.SentinelNoNewMessages}
	}
	return models.ParsedResult{
		Messages:       messages,
		HasNewMessages: true,
		Message:        fmt.Sprintf("Found %d new message(s)", len(messages)),
	}
}

// itemFields resolves one array element to its object fields. Strings are
// tolerant-decoded; undecodable strings become {code: s, message: s}.
// Anything that is not an object contributes no fields.
func (e *Extractor) itemFields(item interface{}) map[string]interface{} {
	if s, ok := item.(string); ok {
		decoded, err := e.decoder.Decode(s)
		if err != nil {
			return map[string]interface{}{"code": s, "message": s}
		}
		item = decoded
	}
	fields, _ := item.(map[string]interface{})
	return fields
}

func (e *Extractor) record(fields map[string]interface{}, now time.Time) models.MessageRecord {
	code, ok := codeOf(fields)
	if !ok {
		code = unknownCode
	}
	return models.NewRecordBuilder().
		WithID(e.newID()).
		WithCode(code).
		WithTimestamp(now).
		WithSeverity(models.SeveritySuccess).
		WithMetadataMap(SpreadAll(fields)).
		Build()
}

func empty(message string) models.ParsedResult {
	return models.ParsedResult{Messages: []models.MessageRecord{}, Message: message}
}

func containsNoNewComments(s string) bool {
	return strings.Contains(s, models.SentinelNoNewComments)
}

// HasNewMessages reports whether env yields at least one record.
func (e *Extractor) HasNewMessages(env models.RawEnvelope) bool {
	return e.Extract(env).HasNewMessages
}

func (e *Extractor) MessageCount(env models.RawEnvelope) int {
	return len(e.Extract(env).Messages)
}
