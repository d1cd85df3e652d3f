package models

import (
	"math"
	"strconv"
	"strings"
)

// RawEnvelope is the {statusCode, body} wrapper returned by the upstream endpoint.
// Body holds a string, a []interface{}, a map[string]interface{} or any other decoded JSON value.
type RawEnvelope struct {
	StatusCode int         `json:"statusCode"`
	Body       interface{} `json:"body"`
}

// StatusCodeOf reads a decoded statusCode field. Whole numbers and numeric
// strings are accepted; anything else maps to 0, which classifies as a
// status error.
func StatusCodeOf(v interface{}) int {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return int(t)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return 0
}
