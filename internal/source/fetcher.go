package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"promofeed/internal/config"
	"promofeed/internal/constants"
	"promofeed/pkg/metrics"
	"promofeed/pkg/models"
	"promofeed/pkg/tolerantjson"
	"promofeed/pkg/tracing"
)

// Endpoint is the path appended to the upstream base URL.
type Endpoint string

const (
	EndpointLatest      Endpoint = ""
	EndpointAllComments Endpoint = "all-comments"
)

const maxBodyBytes = 4 << 20

// Fetcher retrieves one envelope from the upstream notification endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint Endpoint) (models.RawEnvelope, error)
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api request failed: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

type APIFetcher struct {
	client  *http.Client
	baseURL string
	headers map[string]string
	decoder *tolerantjson.Decoder
}

func NewAPIFetcher(cfg config.UpstreamConfig, decoder *tolerantjson.Decoder) *APIFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}
	if decoder == nil {
		decoder = tolerantjson.NewDecoder()
	}
	return &APIFetcher{
		client:  &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		headers: cfg.Headers,
		decoder: decoder,
	}
}

func (f *APIFetcher) url(endpoint Endpoint) string {
	if endpoint == EndpointLatest {
		return f.baseURL
	}
	return strings.TrimRight(f.baseURL, "/") + "/" + string(endpoint)
}

// Fetch issues one GET. The body is decoded tolerantly: an object holding
// statusCode is the envelope itself, anything else becomes the body of an
// envelope carrying the HTTP status.
func (f *APIFetcher) Fetch(ctx context.Context, endpoint Endpoint) (env models.RawEnvelope, err error) {
	ctx, span := tracing.StartSpan(ctx, "upstream.fetch", attribute.String("endpoint", string(endpoint)))
	start := time.Now()
	defer func() {
		metrics.ObserveFetchDuration(string(endpoint), time.Since(start))
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.IncFetchAttempt(string(endpoint), status)
		tracing.EndSpan(span, err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url(endpoint), nil)
	if err != nil {
		return models.RawEnvelope{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return models.RawEnvelope{}, fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.RawEnvelope{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		return models.RawEnvelope{}, &StatusError{StatusCode: resp.StatusCode, Message: f.errorMessage(raw)}
	}

	decoded, err := f.decoder.Decode(string(raw))
	if err != nil {
		return models.RawEnvelope{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return toEnvelope(resp.StatusCode, decoded), nil
}

// errorMessage extracts {"error": "..."} from an error response, if present.
func (f *APIFetcher) errorMessage(raw []byte) string {
	decoded, err := f.decoder.Decode(string(raw))
	if err != nil {
		return ""
	}
	obj, _ := decoded.(map[string]interface{})
	msg, _ := obj["error"].(string)
	return msg
}

func toEnvelope(httpStatus int, decoded interface{}) models.RawEnvelope {
	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return models.RawEnvelope{StatusCode: httpStatus, Body: decoded}
	}
	status, ok := obj["statusCode"]
	if !ok {
		return models.RawEnvelope{StatusCode: httpStatus, Body: decoded}
	}
	return models.RawEnvelope{StatusCode: models.StatusCodeOf(status), Body: obj["body"]}
}
