package source

import (
	"context"
	"errors"
	"net"
	"net/http"

	"promofeed/pkg/tolerantjson"
)

// IsRetryableError reports whether a fetch error is worth another attempt,
// along with a short reason used as a metric label.
func IsRetryableError(err error) (bool, string) {
	if err == nil {
		return false, ""
	}

	if errors.Is(err, context.Canceled) {
		return false, "context_canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true, "timeout"
	}

	var decodeErr *tolerantjson.DecodeError
	if errors.As(err, &decodeErr) {
		return false, "decode_error"
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode >= http.StatusInternalServerError:
			return true, "server_error"
		case statusErr.StatusCode == http.StatusTooManyRequests, statusErr.StatusCode == http.StatusRequestTimeout:
			return true, "throttled"
		default:
			return false, "client_error"
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true, "network_timeout"
		}
		return true, "network_error"
	}

	return false, "unknown_error"
}
