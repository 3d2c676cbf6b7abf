package main

import (
	"github.com/spf13/cobra"

	"github.com/smit333/Oracle-Agent-Ex/internal/config"
	"github.com/smit333/Oracle-Agent-Ex/internal/observability"
	"github.com/smit333/Oracle-Agent-Ex/internal/server"
)

func newServeCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			pipeline, hcmClient, cat, err := buildPipeline(cfg)
			if err != nil {
				return err
			}

			srv := server.New(server.Config{Port: cfg.Port, Debug: debug},
				pipeline, hcmClient, cat, observability.Default())
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable gin debug mode")
	return cmd
}
