package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/rs/zerolog"
	"github.com/vsnandy/sportsproxy/api"
	"github.com/vsnandy/sportsproxy/config"
	"github.com/vsnandy/sportsproxy/lambdautils"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed loading config")
	}
	logger = logger.Level(cfg.LogLevel)

	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.Region)})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed creating aws session")
	}

	router, err := api.NewRouter(api.FromConfig(cfg, sess))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed building router")
	}

	logger.Info().Int("routes", len(router.Routes())).Msg("router ready")

	lambda.Start(func(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error) {
		return router.Route(lambdautils.WithLogger(ctx, logger), request)
	})
}
