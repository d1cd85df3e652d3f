package models

import "time"

type RecordBuilder struct {
	record *MessageRecord
}

func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{
		record: &MessageRecord{
			Severity: SeveritySuccess,
			Metadata: make(map[string]interface{}),
		},
	}
}

func (b *RecordBuilder) WithID(id string) *RecordBuilder {
	b.record.ID = id
	return b
}

func (b *RecordBuilder) WithCode(code string) *RecordBuilder {
	b.record.Code = code
	if b.record.Message == "" {
		b.record.Message = code
	}
	return b
}

func (b *RecordBuilder) WithMessage(message string) *RecordBuilder {
	b.record.Message = message
	return b
}

func (b *RecordBuilder) WithTimestamp(timestamp time.Time) *RecordBuilder {
	b.record.Timestamp = timestamp
	return b
}

func (b *RecordBuilder) WithSeverity(severity Severity) *RecordBuilder {
	b.record.Severity = severity
	return b
}

func (b *RecordBuilder) Build() MessageRecord {
	return *b.record
}

func (b *RecordBuilder) WithMetadataMap(meta map[string]interface{}) *RecordBuilder {
	for k, v := range meta {
		b.record.Metadata[k] = v
	}
	return b
}
