package extraction

// MetadataPolicy derives a record's metadata from the source object. The
// source map is never modified.
type MetadataPolicy func(fields map[string]interface{}) map[string]interface{}

var coreFields = []string{"id", "code", "message", "timestamp", "severity"}

// SpreadAll keeps location, price and every other field, code included.
// Used for envelope bodies.
func SpreadAll(fields map[string]interface{}) map[string]interface{} {
	meta := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		meta[k] = v
	}
	return meta
}

// StripCore keeps every field except id, code, message, timestamp and severity.
// Used for pasted legacy documents.
func StripCore(fields map[string]interface{}) map[string]interface{} {
	meta := SpreadAll(fields)
	for _, k := range coreFields {
		delete(meta, k)
	}
	return meta
}

// LocationPrice keeps only location and price. Used for storage snapshots.
func LocationPrice(fields map[string]interface{}) map[string]interface{} {
	meta := make(map[string]interface{}, 2)
	for _, k := range []string{"location", "price"} {
		if v, ok := fields[k]; ok && v != nil {
			meta[k] = v
		}
	}
	return meta
}
