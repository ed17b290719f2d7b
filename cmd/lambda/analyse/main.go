// Lambda: drain staged batches, score and classify them, and store the new articles.
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
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
	Stored     int    `json:"stored"`
}

// Handler runs one analysis pass.
func Handler(ctx context.Context, _ any) (Response, error) {
	cfg := config.Load()
	a := app.New(cfg, logging.New(cfg.Logging.Level))
	defer a.Close()

	pipeline, err := a.AnalysisPipeline(ctx)
	if err != nil {
		a.Logger().Error("analysis not configured", "error", err)
		return Response{StatusCode: 500, Body: err.Error()}, err
	}

	report, err := pipeline.Run(ctx)
	if err != nil {
		a.Logger().Error("analysis failed", "error", err)
		return Response{StatusCode: 500, Body: err.Error()}, err
	}

	if report.Staged == 0 {
		return Response{StatusCode: 200, Body: "Nothing staged"}, nil
	}
	return Response{
		StatusCode: 200,
		Body:       fmt.Sprintf("Stored %d of %d staged articles", len(report.Persisted), report.Staged),
		Stored:     len(report.Persisted),
	}, nil
}

func main() {
	lambda.Start(Handler)
}
