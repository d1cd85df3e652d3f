package metrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"promofeed/internal/logger"
)

// PutMetricDataAPI is the subset of *cloudwatch.Client the collector needs.
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

type CloudWatchCollector struct {
	cw         PutMetricDataAPI
	namespace  string
	dimensions []types.Dimension
	timeout    time.Duration
	now        func() time.Time
	logger     logger.Logger
}

func NewCloudWatchCollector(cw PutMetricDataAPI, namespace string, dimensions map[string]string, log logger.Logger) *CloudWatchCollector {
	dims := make([]types.Dimension, 0, len(dimensions))
	for k, v := range dimensions {
		dims = append(dims, types.Dimension{Name: aws.String(k), Value: aws.String(v)})
	}
	return &CloudWatchCollector{
		cw:         cw,
		namespace:  namespace,
		dimensions: dims,
		timeout:    10 * time.Second,
		now:        time.Now,
		logger:     log,
	}
}

func (c *CloudWatchCollector) RefreshFailed(frame string) {
	c.put("RefreshFailed", c.datum("RefreshError", frame, types.StandardUnitCount, 1))
}

func (c *CloudWatchCollector) RefreshSucceeded(frame string, messages int, duration time.Duration) {
	c.put("RefreshSucceeded",
		c.datum("RefreshSuccess", frame, types.StandardUnitCount, 1),
		c.datum("RefreshMessages", frame, types.StandardUnitCount, float64(messages)),
		c.datum("RefreshLatency", frame, types.StandardUnitMilliseconds, float64(duration.Milliseconds())),
	)
}

func (c *CloudWatchCollector) datum(name, frame string, unit types.StandardUnit, value float64) types.MetricDatum {
	now := c.now()
	dims := make([]types.Dimension, 0, len(c.dimensions)+1)
	dims = append(dims, c.dimensions...)
	dims = append(dims, types.Dimension{Name: aws.String("TimeFrame"), Value: aws.String(frame)})
	return types.MetricDatum{
		MetricName: aws.String(name),
		Timestamp:  &now,
		Dimensions: dims,
		Unit:       unit,
		Value:      aws.Float64(value),
	}
}

func (c *CloudWatchCollector) put(event string, data ...types.MetricDatum) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	_, err := c.cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(c.namespace),
		MetricData: data,
	})
	if err != nil && c.logger != nil {
		c.logger.Errorw("Failed to send CloudWatch metric", "event", event, "error", err)
	}
}
