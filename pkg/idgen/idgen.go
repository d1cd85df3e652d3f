package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator returns a fresh identifier on every call.
type Generator func() string

// UUID generates random version 4 UUIDs.
func UUID() Generator {
	return uuid.NewString
}

// Sequence generates prefix-1, prefix-2, ... and is safe for concurrent use.
func Sequence(prefix string) Generator {
	var n atomic.Uint64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}
}
