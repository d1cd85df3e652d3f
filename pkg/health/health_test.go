package health

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error   { return nil }
func fail(context.Context) error { return errors.New("down") }

func TestCheckerRegistry(t *testing.T) {
	tests := []struct {
		name     string
		critical []func(context.Context) error
		optional []func(context.Context) error
		want     Status
	}{
		{"empty", nil, nil, StatusHealthy},
		{"all ok", []func(context.Context) error{ok}, []func(context.Context) error{ok}, StatusHealthy},
		{"optional failing", []func(context.Context) error{ok}, []func(context.Context) error{fail}, StatusDegraded},
		{"critical failing", []func(context.Context) error{fail}, []func(context.Context) error{fail}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewCheckerRegistry()
			for i, fn := range tt.critical {
				r.Register(NewFuncChecker("critical"+string(rune('a'+i)), fn))
			}
			for i, fn := range tt.optional {
				r.RegisterOptional(NewFuncChecker("optional"+string(rune('a'+i)), fn))
			}

			h := r.Check(context.Background())
			assert.Equal(t, tt.want, h.Status)
			assert.Len(t, h.Checks, len(tt.critical)+len(tt.optional))
		})
	}
}

func TestCheckerRegistry_ReportsMessage(t *testing.T) {
	r := NewCheckerRegistry()
	r.Register(NewFuncChecker("upstream", fail))

	h := r.Check(context.Background())
	require.Contains(t, h.Checks, "upstream")
	assert.Equal(t, "down", h.Checks["upstream"].Message)
	assert.Equal(t, StatusUnhealthy, h.Checks["upstream"].Status)
}

func TestRedisChecker_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	c := NewRedisChecker(client)
	assert.Equal(t, "redis", c.Name())
	assert.Error(t, c.Check(context.Background()))
}
