package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

const metricNamespace = "Composer/API"

// Metrics publishes operational metrics to CloudWatch. When disabled (no
// client), recording is a cheap no-op so call sites never have to check.
type Metrics struct {
	client  *cloudwatch.Client
	logger  *zap.Logger
	enabled bool

	mu     sync.Mutex
	buffer []types.MetricDatum
}

// NewMetrics creates a metrics publisher. Pass a nil client to disable.
func NewMetrics(client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{
		client:  client,
		logger:  logger,
		enabled: client != nil,
	}
}

// RecordRequest records one HTTP request with its duration and status
func (m *Metrics) RecordRequest(route string, status int, duration time.Duration) {
	if !m.enabled {
		return
	}

	dims := []types.Dimension{
		{Name: aws.String("Route"), Value: aws.String(route)},
	}

	m.mu.Lock()
	m.buffer = append(m.buffer,
		types.MetricDatum{
			MetricName: aws.String("RequestDuration"),
			Dimensions: dims,
			Unit:       types.StandardUnitMilliseconds,
			Value:      aws.Float64(float64(duration.Milliseconds())),
		},
		types.MetricDatum{
			MetricName: aws.String("RequestCount"),
			Dimensions: dims,
			Unit:       types.StandardUnitCount,
			Value:      aws.Float64(1),
		},
	)
	if status >= 500 {
		m.buffer = append(m.buffer, types.MetricDatum{
			MetricName: aws.String("RequestErrors"),
			Dimensions: dims,
			Unit:       types.StandardUnitCount,
			Value:      aws.Float64(1),
		})
	}
	flush := len(m.buffer) >= 20
	m.mu.Unlock()

	if flush {
		m.Flush(context.Background())
	}
}

// RecordCommand records one command execution
func (m *Metrics) RecordCommand(command string, duration time.Duration, failed bool) {
	if !m.enabled {
		return
	}

	dims := []types.Dimension{
		{Name: aws.String("Command"), Value: aws.String(command)},
	}

	m.mu.Lock()
	m.buffer = append(m.buffer, types.MetricDatum{
		MetricName: aws.String("CommandDuration"),
		Dimensions: dims,
		Unit:       types.StandardUnitMilliseconds,
		Value:      aws.Float64(float64(duration.Milliseconds())),
	})
	if failed {
		m.buffer = append(m.buffer, types.MetricDatum{
			MetricName: aws.String("CommandErrors"),
			Dimensions: dims,
			Unit:       types.StandardUnitCount,
			Value:      aws.Float64(1),
		})
	}
	m.mu.Unlock()
}

// Flush publishes any buffered metric data
func (m *Metrics) Flush(ctx context.Context) {
	if !m.enabled {
		return
	}

	m.mu.Lock()
	batch := m.buffer
	m.buffer = nil
	m.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	// PutMetricData accepts at most 20 datums per call
	for start := 0; start < len(batch); start += 20 {
		end := start + 20
		if end > len(batch) {
			end = len(batch)
		}
		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(metricNamespace),
			MetricData: batch[start:end],
		})
		if err != nil {
			m.logger.Warn("Failed to publish metrics", zap.Error(err))
			return
		}
	}
}
