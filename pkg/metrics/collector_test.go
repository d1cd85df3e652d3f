package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promofeed/internal/logger"
)

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func TestCloudWatchCollector_RefreshSucceeded(t *testing.T) {
	fake := &fakeCloudWatch{}
	c := NewCloudWatchCollector(fake, "PromoFeed", map[string]string{"Env": "test"}, logger.NopLogger())

	c.RefreshSucceeded("day", 4, 120*time.Millisecond)

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "PromoFeed", aws.ToString(in.Namespace))
	require.Len(t, in.MetricData, 3)

	byName := map[string]types.MetricDatum{}
	for _, d := range in.MetricData {
		byName[aws.ToString(d.MetricName)] = d
	}
	assert.Equal(t, 4.0, aws.ToFloat64(byName["RefreshMessages"].Value))
	assert.Equal(t, 120.0, aws.ToFloat64(byName["RefreshLatency"].Value))
	assert.Equal(t, types.StandardUnitMilliseconds, byName["RefreshLatency"].Unit)

	dims := byName["RefreshSuccess"].Dimensions
	require.Len(t, dims, 2)
	assert.Equal(t, "TimeFrame", aws.ToString(dims[1].Name))
	assert.Equal(t, "day", aws.ToString(dims[1].Value))
}

func TestCloudWatchCollector_ErrorIsSwallowed(t *testing.T) {
	fake := &fakeCloudWatch{err: errors.New("throttled")}
	c := NewCloudWatchCollector(fake, "PromoFeed", nil, logger.NopLogger())

	assert.NotPanics(t, func() { c.RefreshFailed("all") })
	require.Len(t, fake.inputs, 1)
	assert.Equal(t, "RefreshError", aws.ToString(fake.inputs[0].MetricData[0].MetricName))
}

func TestPrometheusCollector(t *testing.T) {
	c := NewPrometheusCollector()

	before := testutil.ToFloat64(RefreshTotal.WithLabelValues("week", "success"))
	c.RefreshSucceeded("week", 7, time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(RefreshTotal.WithLabelValues("week", "success")))
	assert.Equal(t, 7.0, testutil.ToFloat64(FeedMessages.WithLabelValues("week")))

	before = testutil.ToFloat64(RefreshTotal.WithLabelValues("week", "error"))
	c.RefreshFailed("week")
	assert.Equal(t, before+1, testutil.ToFloat64(RefreshTotal.WithLabelValues("week", "error")))
}

type countingCollector struct{ ok, failed int }

func (c *countingCollector) RefreshFailed(string) { c.failed++ }
func (c *countingCollector) RefreshSucceeded(string, int, time.Duration) {
	c.ok++
}

func TestMultiCollector(t *testing.T) {
	a, b := &countingCollector{}, &countingCollector{}
	m := MultiCollector{a, b}

	m.RefreshSucceeded("all", 1, time.Millisecond)
	m.RefreshFailed("all")

	assert.Equal(t, 1, a.ok)
	assert.Equal(t, 1, b.failed)
}

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}
