package extraction

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"promofeed/pkg/models"
)

// Body is the closed set of shapes an envelope can take. Classify decides the
// variant once per level; the extractor switches over it exhaustively.
type Body interface {
	Kind() string
	isBody()
}

type StatusError struct {
	Code int
}

type StringBody struct {
	Text string
}

type ArrayBody struct {
	Items []interface{}
}

// ObjectBody is a single object carrying a truthy code field.
type ObjectBody struct {
	Fields map[string]interface{}
}

type EmptyOrInvalid struct{}

func (StatusError) Kind() string    { return "status_error" }
func (StringBody) Kind() string     { return "string" }
func (ArrayBody) Kind() string      { return "array" }
func (ObjectBody) Kind() string     { return "object" }
func (EmptyOrInvalid) Kind() string { return "empty" }

func (StatusError) isBody()    {}
func (StringBody) isBody()     {}
func (ArrayBody) isBody()      {}
func (ObjectBody) isBody()     {}
func (EmptyOrInvalid) isBody() {}

func Classify(env models.RawEnvelope) Body {
	if env.StatusCode != http.StatusOK {
		return StatusError{Code: env.StatusCode}
	}

	switch body := env.Body.(type) {
	case string:
		return StringBody{Text: body}
	case []interface{}:
		return ArrayBody{Items: body}
	case map[string]interface{}:
		if _, ok := codeOf(body); ok {
			return ObjectBody{Fields: body}
		}
	}

	return EmptyOrInvalid{}
}

// codeOf returns the code field rendered as text, and whether it is truthy.
func codeOf(fields map[string]interface{}) (string, bool) {
	v, ok := fields["code"]
	if !ok || !truthy(v) {
		return "", false
	}
	return stringify(v), true
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	}
	return true
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
