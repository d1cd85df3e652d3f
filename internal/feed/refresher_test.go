package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promofeed/internal/source"
)

func TestRefreshFrames_DefaultFirstThenFetched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, []string{"all"}, f.svc.refreshFrames())

	_, err := f.svc.Refresh(ctx, "week")
	require.NoError(t, err)
	_, err = f.svc.Refresh(ctx, "all")
	require.NoError(t, err)

	assert.Equal(t, []string{"all", "week"}, f.svc.refreshFrames())
}

func TestSafeRefresh_RecoversPanic(t *testing.T) {
	f := newFixture(t)
	f.fetcher.panicOn = source.EndpointAllComments

	assert.NotPanics(t, func() {
		f.svc.safeRefresh(context.Background(), "all")
	})
}

func TestStartRefresher_RunsUntilCanceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- f.svc.StartRefresher(ctx)
	}()

	require.Eventually(t, func() bool {
		return f.fetcher.callCount() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}
