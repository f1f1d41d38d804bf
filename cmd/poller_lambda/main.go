package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/chris/safe-signature-processor/pkg/config"
	"github.com/chris/safe-signature-processor/pkg/processor"
	"github.com/chris/safe-signature-processor/pkg/worker"
)

var w *worker.Worker

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("unable to load configuration: %v", err)
	}
	slog.SetDefault(cfg.NewLogger())

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	w, err = worker.New(context.TODO(), cfg, awsCfg, nil, slog.Default())
	if err != nil {
		log.Fatalf("unable to build worker: %v", err)
	}
}

// HandleRequest is triggered by an EventBridge schedule. It runs one poll cycle
// and returns once every enqueued command has finished or the invocation
// deadline is reached.
func HandleRequest(ctx context.Context, event events.CloudWatchEvent) (processor.Result, error) {
	slog.Info("starting poll cycle", "event_id", event.ID)

	res, err := w.RunOnce(ctx)
	if err != nil {
		slog.Error("poll cycle failed", "cycle_id", res.CycleID, "error", err)
		return res, err
	}

	slog.Info("poll cycle finished", "cycle_id", res.CycleID, "found", res.Found, "enqueued", res.Enqueued)
	return res, nil
}

func main() {
	lambda.Start(HandleRequest)
}
