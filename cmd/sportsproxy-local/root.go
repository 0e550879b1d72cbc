package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/vsnandy/sportsproxy/proxy"
)

type routerFunc func() (*proxy.Router, error)

func rootCmd(ctx context.Context, build routerFunc) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "sportsproxy-local",
		Short:         "Run the sportsproxy lambda on a workstation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(envFile, cmd.Flags().Changed("env"))
		},
	}
	root.SetContext(ctx)
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before the configuration")

	root.AddCommand(serveCmd(build))
	root.AddCommand(invokeCmd(build))
	return root
}

// loadEnv loads path into the environment without overriding variables that
// are already set. A missing default file is not an error.
func loadEnv(path string, explicit bool) error {
	err := godotenv.Load(path)
	if err == nil {
		log.Debug().Str("file", path).Msg("environment loaded")
		return nil
	}
	if os.IsNotExist(err) && !explicit {
		return nil
	}
	return errors.Wrapf(err, "failed loading %s", path)
}
