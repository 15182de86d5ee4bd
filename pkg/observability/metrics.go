package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metrics publishes operational metrics to CloudWatch.
// Publishing is best-effort: a metrics failure never fails the operation
// being measured.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
}

// NewMetrics creates a metrics publisher for the given namespace
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
	}
}

// IncrementCounter records a count-of-one metric
func (m *Metrics) IncrementCounter(ctx context.Context, name string, dimensions map[string]string) {
	m.put(ctx, name, 1, types.StandardUnitCount, dimensions)
}

// RecordDuration records an operation duration in milliseconds
func (m *Metrics) RecordDuration(ctx context.Context, name string, d time.Duration, dimensions map[string]string) {
	m.put(ctx, name, float64(d.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
}

// RecordGauge records an instantaneous value, e.g. pending notification count
func (m *Metrics) RecordGauge(ctx context.Context, name string, value float64, dimensions map[string]string) {
	m.put(ctx, name, value, types.StandardUnitNone, dimensions)
}

func (m *Metrics) put(ctx context.Context, name string, value float64, unit types.StandardUnit, dimensions map[string]string) {
	if m.client == nil {
		return
	}

	dims := make([]types.Dimension, 0, len(dimensions))
	for k, v := range dimensions {
		dims = append(dims, types.Dimension{
			Name:  aws.String(k),
			Value: aws.String(v),
		})
	}

	datum := types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: dims,
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: []types.MetricDatum{datum},
	}

	// Fire and forget; metrics must not add latency or failure modes
	go func() {
		putCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_, _ = m.client.PutMetricData(putCtx, input)
	}()
}
