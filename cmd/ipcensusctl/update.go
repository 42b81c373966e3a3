package main

import "github.com/spf13/cobra"

func newUpdateCmd() *cobra.Command {
	var async bool

	c := &cobra.Command{
		Use:   "update",
		Short: "Trigger an update cycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := getClient(cmd).RunUpdate(cmd.Context(), async)
			if err != nil {
				return err
			}
			if resp.Skipped {
				cmd.Println("skipped: another update is already in progress")
				return nil
			}
			if resp.Error != "" {
				cmd.Println("update failed:", resp.Error)
				return nil
			}
			cmd.Println("update triggered")
			return nil
		},
	}

	c.Flags().BoolVar(&async, "async", false, "return immediately instead of waiting for the pipeline to finish")
	return c
}

func newHealthCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "health",
		Short: "Report index/update health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := getClient(cmd).Health(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("status: %s\n", resp.Status)
			cmd.Printf("index_ready: %v\n", resp.IndexReady)
			cmd.Printf("update_in_progress: %v\n", resp.UpdateInProg)
			cmd.Printf("last_update_phase: %s\n", resp.LastUpdatePhas)
			cmd.Printf("data_size: %d\n", resp.DataSize)
			return nil
		},
	}
	return c
}
