package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/snisarenko-labs/ipcensus/internal/ipcensusclient"
)

type ctxKey string

const clientKey ctxKey = "ipcensusclient"

var addr string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ipcensusctl",
		Short: "IP census admin CLI",
		Example: `	ipcensusctl --addr 127.0.0.1:50051 lookup --ip 1.2.3.4
	ipcensusctl --addr 127.0.0.1:50051 update --async
	ipcensusctl --addr 127.0.0.1:50051 feedsource list`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := ipcensusclient.New(addr)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), clientKey, c))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if c, ok := cmd.Context().Value(clientKey).(*ipcensusclient.Client); ok && c != nil {
				return c.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(
		&addr,
		"addr",
		getenv("IPCENSUS_ADDR", "127.0.0.1:50051"),
		"gRPC address (or IPCENSUS_ADDR)",
	)

	root.AddCommand(newLookupCmd())
	root.AddCommand(newBatchLookupCmd())
	root.AddCommand(newUpdateCmd())
	root.AddCommand(newHealthCmd())
	root.AddCommand(newFeedSourceCmd())
	return root
}

func getClient(cmd *cobra.Command) *ipcensusclient.Client {
	c, _ := cmd.Context().Value(clientKey).(*ipcensusclient.Client)
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
