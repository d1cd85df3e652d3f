package extraction

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"promofeed/pkg/models"
)

var ErrEmptyInput = errors.New("input is empty")

const noMessageProvided = "No message provided"

// ParseDocument parses a pasted document. An object with a truthy statusCode
// and body is treated as an envelope; anything else is the legacy shape: one
// object or an array of objects carrying id, code, message, timestamp and
// severity plus arbitrary extra fields.
func (e *Extractor) ParseDocument(text string) (models.ParsedResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ParsedResult{}, ErrEmptyInput
	}

	decoded, err := e.decoder.Decode(text)
	if err != nil {
		return models.ParsedResult{}, err
	}

	if env, ok := asEnvelope(decoded); ok {
		return e.Extract(env), nil
	}

	items, ok := decoded.([]interface{})
	if !ok {
		items = []interface{}{decoded}
	}

	now := e.now()
	messages := make([]models.MessageRecord, 0, len(items))
	for _, item := range items {
		fields, _ := item.(map[string]interface{})
		messages = append(messages, e.legacyRecord(fields, now))
	}

	return models.ParsedResult{
		Messages:       messages,
		HasNewMessages: len(messages) > 0,
		Message:        fmt.Sprintf("Parsed %d message(s)", len(messages)),
	}, nil
}

func asEnvelope(v interface{}) (models.RawEnvelope, bool) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return models.RawEnvelope{}, false
	}
	status, body := obj["statusCode"], obj["body"]
	if !truthy(status) || !truthy(body) {
		return models.RawEnvelope{}, false
	}
	return models.RawEnvelope{StatusCode: models.StatusCodeOf(status), Body: body}, true
}

func (e *Extractor) legacyRecord(fields map[string]interface{}, now time.Time) models.MessageRecord {
	code, ok := codeOf(fields)
	if !ok {
		code = unknownCode
	}

	message := noMessageProvided
	if v, ok := fields["message"]; ok && truthy(v) {
		message = stringify(v)
	}

	return models.NewRecordBuilder().
		WithID(e.newID()).
		WithCode(code).
		WithMessage(message).
		WithTimestamp(timestampOf(fields, now)).
		WithSeverity(severityOf(fields, models.SeverityInfo)).
		WithMetadataMap(StripCore(fields)).
		Build()
}

var timestampLayouts = []string{time.RFC3339, time.DateOnly}

// timestampOf reads an RFC 3339 or date-only string, or epoch milliseconds,
// falling back to now.
func timestampOf(fields map[string]interface{}, now time.Time) time.Time {
	switch t := fields["timestamp"].(type) {
	case string:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts
			}
		}
	case float64:
		if t > 0 && !math.IsInf(t, 0) {
			return time.UnixMilli(int64(t)).UTC()
		}
	}
	return now
}

func severityOf(fields map[string]interface{}, fallback models.Severity) models.Severity {
	if s, ok := fields["severity"].(string); ok {
		if sev := models.Severity(s); sev.Valid() {
			return sev
		}
	}
	return fallback
}
