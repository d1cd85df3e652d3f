package extraction

import "promofeed/pkg/models"

const noCodeProvided = "No code provided"

// FromStorage converts the items of a storage snapshot. Only location and
// price survive as metadata.
func (e *Extractor) FromStorage(items []interface{}) []models.MessageRecord {
	now := e.now()
	records := make([]models.MessageRecord, 0, len(items))
	for _, item := range items {
		fields, _ := item.(map[string]interface{})

		code, ok := codeOf(fields)
		message := code
		if !ok {
			code, message = unknownCode, noCodeProvided
		}

		records = append(records, models.NewRecordBuilder().
			WithID(e.newID()).
			WithCode(code).
			WithMessage(message).
			WithTimestamp(timestampOf(fields, now)).
			WithSeverity(severityOf(fields, models.SeveritySuccess)).
			WithMetadataMap(LocationPrice(fields)).
			Build())
	}
	return records
}
