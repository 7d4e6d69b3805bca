// Package main implements the trigger-publisher CLI tool for sending
// manual wake-up signals to the scheduler's trigger queue.
//
// This tool is intended for local development and operational use: forcing
// an immediate scheduler run after a data fix, or re-kicking a stalled
// queue. Because signals are content-free and the processor is idempotent,
// publishing extra signals is always safe.
//
// Usage:
//
//	go run ./cmd/tools/trigger-publisher
//	go run ./cmd/tools/trigger-publisher --count=3
//	go run ./cmd/tools/trigger-publisher --queue-url=https://sqs.../my-queue
//	go run ./cmd/tools/trigger-publisher --dry-run
//
// The tool reads SQS_TRIGGER_QUEUE and AWS settings from environment
// variables (or a .env file via godotenv); --queue-url overrides the
// environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"touchbase/internal/config"
	"touchbase/internal/queue"
	"touchbase/internal/types"
)

func main() {
	countFlag := flag.Int("count", 1, "Number of trigger signals to publish")
	queueURLFlag := flag.String("queue-url", "", "Override the trigger queue URL from the environment")
	dryRunFlag := flag.Bool("dry-run", false, "Print what would be published without sending")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: trigger-publisher [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Publish manual wake-up signals to the scheduler trigger queue.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *countFlag < 1 {
		fmt.Fprintf(os.Stderr, "error: --count must be at least 1\n")
		os.Exit(1)
	}

	// Load .env for local runs; real environments set variables directly.
	_ = godotenv.Load()

	var awsSettings config.AWSConfig
	if err := envconfig.Process("", &awsSettings); err != nil {
		fmt.Fprintf(os.Stderr, "error: reading AWS settings from environment: %v\n", err)
		os.Exit(1)
	}
	if *queueURLFlag != "" {
		awsSettings.TriggerQueueURL = *queueURLFlag
	}
	if awsSettings.TriggerQueueURL == "" {
		fmt.Fprintf(os.Stderr, "error: no trigger queue configured (set SQS_TRIGGER_QUEUE or pass --queue-url)\n")
		os.Exit(1)
	}

	if *dryRunFlag {
		fmt.Printf("dry-run: would publish %d trigger signal(s) to %s with reason=%q\n",
			*countFlag, awsSettings.TriggerQueueURL, types.TriggerReasonManual)
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(awsSettings.Region))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading AWS SDK config: %v\n", err)
		os.Exit(1)
	}

	sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		// LocalStack support: point the SQS client at a local endpoint.
		if awsSettings.EndpointURL != "" {
			o.BaseEndpoint = aws.String(awsSettings.EndpointURL)
		}
	})

	publisher := queue.NewTriggerPublisher(sqsClient, awsSettings, logger)

	for i := 0; i < *countFlag; i++ {
		traceID, err := publisher.Publish(ctx, types.TriggerReasonManual)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: publishing signal %d/%d: %v\n", i+1, *countFlag, err)
			os.Exit(1)
		}
		fmt.Printf("published trigger signal %d/%d (trace_id=%s)\n", i+1, *countFlag, traceID)
	}
}
