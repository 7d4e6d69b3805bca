package actions

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricNamespace is the default CloudWatch namespace for scheduler
// telemetry, used when no namespace is configured.
const MetricNamespace = "TouchBase/Scheduler"

// Metric and dimension names emitted per processor run.
const (
	MetricDueActions   = "DueActions"
	MetricRunOutcome   = "ActionOutcome"
	MetricRunLatency   = "RunLatency"
	DimOutcome         = "Outcome"
	outcomeDimComplete = "completed"
	outcomeDimSkipped  = "skipped"
)

// RunMetrics records telemetry for processor runs.
type RunMetrics interface {
	RecordRun(ctx context.Context, report RunReport, duration time.Duration)
}

// NoopRunMetrics discards all metrics. Used in tests and in the CLI, where
// no telemetry backend is wired.
type NoopRunMetrics struct{}

// RecordRun implements RunMetrics.
func (NoopRunMetrics) RecordRun(context.Context, RunReport, time.Duration) {}

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchRunMetrics implements RunMetrics by emitting per-run metrics to
// AWS CloudWatch:
//
//   - DueActions: size of the due set, no dims
//   - ActionOutcome: Dims {Outcome: completed|skipped}
//   - RunLatency: wall time of the full run, in milliseconds
//
// Metric publication is best-effort: failures are logged, never propagated,
// so telemetry can never fail a run.
type CloudWatchRunMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// Compile-time assertion that CloudWatchRunMetrics implements RunMetrics.
var _ RunMetrics = (*CloudWatchRunMetrics)(nil)

// NewCloudWatchRunMetrics creates run metrics publishing to the given
// namespace. An empty namespace falls back to MetricNamespace.
func NewCloudWatchRunMetrics(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchRunMetrics {
	if namespace == "" {
		namespace = MetricNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchRunMetrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordRun implements RunMetrics.
func (m *CloudWatchRunMetrics) RecordRun(ctx context.Context, report RunReport, duration time.Duration) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(MetricDueActions),
				Value:      aws.Float64(float64(report.Due)),
				Unit:       cwtypes.StandardUnitCount,
			},
			{
				MetricName: aws.String(MetricRunOutcome),
				Value:      aws.Float64(float64(report.Completed)),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(DimOutcome), Value: aws.String(outcomeDimComplete)},
				},
			},
			{
				MetricName: aws.String(MetricRunOutcome),
				Value:      aws.Float64(float64(report.Skipped)),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(DimOutcome), Value: aws.String(outcomeDimSkipped)},
				},
			},
			{
				MetricName: aws.String(MetricRunLatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.ErrorContext(ctx, "failed to record run metrics",
			"error", err,
			"due", report.Due,
		)
	}
}
