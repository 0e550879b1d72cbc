package main

import (
	"encoding/json"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func invokeCmd(build routerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "invoke <event.json>",
		Short: "Route one API Gateway v2 event and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "failed reading event")
			}

			var event events.APIGatewayV2HTTPRequest
			if err := json.Unmarshal(raw, &event); err != nil {
				return errors.Wrapf(err, "failed decoding event %s", args[0])
			}

			router, err := build()
			if err != nil {
				return err
			}

			response, err := router.Route(log.Logger.WithContext(cmd.Context()), event)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(response)
		},
	}
}
