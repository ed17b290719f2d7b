// Lambda: scrape every configured site and stage one CSV batch per source.
package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"

	"NewsPolarity/internal/app"
	"NewsPolarity/internal/config"
	"NewsPolarity/internal/logging"
)

// Response mirrors the API-gateway shaped result of the handler.
type Response struct {
	StatusCode int      `json:"statusCode"`
	Body       string   `json:"body"`
	Keys       []string `json:"keys,omitempty"`
}

// Handler runs one scrape.
func Handler(ctx context.Context, _ any) (Response, error) {
	cfg := config.Load()
	a := app.New(cfg, logging.New(cfg.Logging.Level))
	defer a.Close()

	pipeline, err := a.ScrapePipeline(ctx)
	if err != nil {
		a.Logger().Error("scrape not configured", "error", err)
		return Response{StatusCode: 500, Body: err.Error()}, err
	}

	report, err := pipeline.Run(ctx)
	if err != nil {
		a.Logger().Error("scrape failed", "error", err)
		return Response{StatusCode: 500, Body: err.Error()}, err
	}

	return Response{
		StatusCode: 200,
		Body:       fmt.Sprintf("Scraped %d articles into %d batches", report.Fetched, len(report.Keys)),
		Keys:       report.Keys,
	}, nil
}

func main() {
	lambda.Start(Handler)
}
