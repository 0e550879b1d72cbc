package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vsnandy/sportsproxy/api"
	"github.com/vsnandy/sportsproxy/config"
	"github.com/vsnandy/sportsproxy/proxy"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd(ctx, buildRouter).Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// buildRouter wires the router the same way the lambda does, from the
// environment.
func buildRouter() (*proxy.Router, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log.Logger = log.Logger.Level(cfg.LogLevel)

	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.Region)})
	if err != nil {
		return nil, err
	}

	return api.NewRouter(api.FromConfig(cfg, sess))
}
