// Package main is the entrypoint for the Action Worker Lambda function.
//
// The worker consumes wake-up signals from the trigger SQS queue and runs
// the action processor: fetch every pending Action due at or before "now",
// execute each one's command effect, mark it completed, and schedule the
// next occurrence for recurring frequencies.
//
// Signals are content-free, so a batch of N messages is coalesced into a
// single processor run; the leftover signals would only re-derive an empty
// due set. If the run itself fails (the due-set fetch), every message in
// the batch is reported as failed so SQS redelivers and a later run retries.
//
// Cold start (main):
//  1. Initialize structured logger.
//  2. Load configuration (.env + environment).
//  3. Connect the pgx pool and build repositories.
//  4. Build the command registry and the processor with CloudWatch metrics.
//  5. Register handler and call lambda.Start (or stdin mode when APP_ENV=local).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"touchbase/internal/actions"
	"touchbase/internal/config"
	"touchbase/internal/db"
	"touchbase/internal/types"
)

// RunRecorder persists run history entries around each processor run.
// Implemented by db.RunHistoryRepository.
type RunRecorder interface {
	Start(ctx context.Context, traceID string) (int64, error)
	Finish(ctx context.Context, id int64, status string, due, completed, skipped int, runErr error) error
}

// Handler holds the dependencies for the action worker Lambda handler.
type Handler struct {
	processor  *actions.Processor
	runHistory RunRecorder
	logger     *slog.Logger
}

// Handle processes an SQS event containing one or more trigger signals.
// The whole batch maps to one processor run.
func (h *Handler) Handle(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	response := events.SQSEventResponse{}
	if len(sqsEvent.Records) == 0 {
		return response, nil
	}

	traceID := h.batchTraceID(sqsEvent.Records)
	logger := h.logger.With("trace_id", traceID)
	logger.InfoContext(ctx, "trigger signals received",
		"batch_size", len(sqsEvent.Records),
	)

	runID, histErr := h.runHistory.Start(ctx, traceID)
	if histErr != nil {
		// Run history is observability, not correctness. Process anyway.
		logger.ErrorContext(ctx, "failed to record run start", "error", histErr)
	}

	report, runErr := h.processor.ProcessDueActions(ctx)

	if histErr == nil {
		status := "success"
		if runErr != nil {
			status = "failed"
		}
		if err := h.runHistory.Finish(ctx, runID, status, report.Due, report.Completed, report.Skipped, runErr); err != nil {
			logger.ErrorContext(ctx, "failed to record run finish", "error", err)
		}
	}

	if runErr != nil {
		logger.ErrorContext(ctx, "processor run failed", "error", runErr)
		// Redeliver every signal in the batch; the next run retries.
		for _, record := range sqsEvent.Records {
			response.BatchItemFailures = append(response.BatchItemFailures,
				events.SQSBatchItemFailure{ItemIdentifier: record.MessageId},
			)
		}
		return response, nil
	}

	logger.InfoContext(ctx, "processor run completed",
		"due", report.Due,
		"completed", report.Completed,
		"rescheduled", report.Rescheduled,
		"skipped", report.Skipped,
	)

	return response, nil
}

// batchTraceID extracts the trace ID of the first parseable signal in the
// batch so the run can be correlated with its publisher. Unparseable bodies
// are fine; the signal's arrival is the only thing that matters.
func (h *Handler) batchTraceID(records []events.SQSMessage) string {
	for _, record := range records {
		var msg types.TriggerMessage
		if err := json.Unmarshal([]byte(record.Body), &msg); err == nil && msg.TraceID != "" {
			return msg.TraceID
		}
	}
	return types.NewTraceID()
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("action worker initializing (cold start)")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.NewPool(ctx, cfg.Database)
	cancel()
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	var metrics actions.RunMetrics
	if cfg.Observability.EnableMetrics {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.AWS.Region),
		)
		if err != nil {
			logger.Error("failed to load AWS SDK config", "error", err)
			os.Exit(1)
		}
		cwClient := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
			// LocalStack support.
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		metrics = actions.NewCloudWatchRunMetrics(cwClient, cfg.Observability.MetricNamespace, logger)
	}

	registry := actions.NewRegistry(
		actions.NewFollowUpHandler(db.NewFollowUpRepository(pool), logger),
	)

	processor := actions.NewProcessor(
		db.NewActionRepository(pool),
		registry,
		metrics,
		nil, // wall clock
		actions.ProcessorConfig{
			MaxParallel:   cfg.Scheduler.MaxParallel,
			CatchUpPolicy: cfg.Scheduler.CatchUpPolicy,
		},
		logger,
	)

	handler := &Handler{
		processor:  processor,
		runHistory: db.NewRunHistoryRepository(pool),
		logger:     logger,
	}

	logger.Info("action worker initialized",
		"trigger_queue", cfg.AWS.TriggerQueueURL,
		"max_parallel", cfg.Scheduler.MaxParallel,
	)

	// Local mode: read a JSON SQS event from stdin instead of starting the
	// Lambda runtime. Usage:
	//   echo '{"Records":[{"messageId":"1","body":"{}"}]}' | go run ./cmd/action-worker
	if cfg.Environment == "local" {
		runLocal(handler, logger)
		return
	}

	lambda.Start(handler.Handle)
}

// runLocal executes the handler once against an SQS event read from stdin.
func runLocal(handler *Handler, logger *slog.Logger) {
	logger.Info("APP_ENV=local: reading SQS event from stdin")

	payload, err := io.ReadAll(os.Stdin)
	if err != nil {
		logger.Error("failed to read stdin", "error", err)
		os.Exit(1)
	}
	if len(payload) == 0 {
		logger.Error("no input received on stdin")
		os.Exit(1)
	}

	var sqsEvent events.SQSEvent
	if err := json.Unmarshal(payload, &sqsEvent); err != nil {
		logger.Error("failed to parse stdin as SQS event", "error", err)
		os.Exit(1)
	}

	response, err := handler.Handle(context.Background(), sqsEvent)
	if err != nil {
		logger.Error("handler execution failed", "error", err)
		os.Exit(1)
	}
	if len(response.BatchItemFailures) > 0 {
		respJSON, _ := json.MarshalIndent(response, "", "  ")
		fmt.Fprintln(os.Stderr, string(respJSON))
		os.Exit(1)
	}

	logger.Info("handler execution completed",
		"records_processed", len(sqsEvent.Records),
	)
}
