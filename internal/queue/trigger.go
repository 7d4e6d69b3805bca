// Package queue provides the SQS-based trigger source for the action
// scheduler: a producer that publishes content-free wake-up signals to the
// trigger queue consumed by the action worker.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"touchbase/internal/config"
	"touchbase/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// TriggerPublisher publishes trigger signals to the scheduler's SQS queue.
//
// A trigger signal carries no instructions: it only tells a worker "now is
// a good time to look at the database". The worker derives all work from
// the pending due set, so duplicate or redundant signals are harmless and
// delivery only needs to be at-least-once.
type TriggerPublisher struct {
	client   SQSSender
	queueURL string
	logger   *slog.Logger
}

// NewTriggerPublisher creates a new TriggerPublisher with the given SQS
// client and configuration. It reads the queue URL from the AWSConfig.
func NewTriggerPublisher(client SQSSender, awsCfg config.AWSConfig, logger *slog.Logger) *TriggerPublisher {
	return &TriggerPublisher{
		client:   client,
		queueURL: awsCfg.TriggerQueueURL,
		logger:   logger,
	}
}

// Publish sends one trigger signal. The reason ("manual", "scheduled") is
// carried as a message attribute for queue-side observability; it does not
// change how the worker reacts.
func (t *TriggerPublisher) Publish(ctx context.Context, reason string) (string, error) {
	msg := types.TriggerMessage{
		TraceID:     types.NewTraceID(),
		PublishedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("queue: failed to marshal TriggerMessage: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(t.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"reason": {
				DataType:    aws.String("String"),
				StringValue: aws.String(reason),
			},
		},
	}

	_, err = t.client.SendMessage(ctx, input)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeUpstreamQueue,
			fmt.Sprintf("failed to send trigger signal to %s", t.queueURL), err)
	}

	t.logger.InfoContext(ctx, "trigger signal published",
		"queue_url", t.queueURL,
		"trace_id", msg.TraceID,
		"reason", reason,
	)

	return msg.TraceID, nil
}
