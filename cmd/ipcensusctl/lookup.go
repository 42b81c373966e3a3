package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newLookupCmd() *cobra.Command {
	var ip string
	var dnsbl bool

	c := &cobra.Command{
		Use:   "lookup",
		Short: "Look up a single IP address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := getClient(cmd).Lookup(cmd.Context(), ip, dnsbl)
			if err != nil {
				return err
			}
			cmd.Println(resp.Outcome)
			for typ, tags := range resp.Tags {
				for _, t := range tags {
					cmd.Printf("  %s: %s (%s)\n", typ, t.Source, t.Name)
				}
			}
			return nil
		},
	}

	c.Flags().StringVar(&ip, "ip", "", "IP address to look up")
	_ = c.MarkFlagRequired("ip")
	c.Flags().BoolVar(&dnsbl, "dnsbl", false, "also query DNSBL providers")
	return c
}

func newBatchLookupCmd() *cobra.Command {
	var ips string
	var dnsbl bool

	c := &cobra.Command{
		Use:   "batch-lookup",
		Short: "Look up a comma-separated list of IP addresses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := getClient(cmd).BatchLookup(cmd.Context(), strings.Split(ips, ","), dnsbl)
			if err != nil {
				return err
			}
			for _, r := range resp.Results {
				cmd.Println(r.Outcome)
			}
			return nil
		},
	}

	c.Flags().StringVar(&ips, "ips", "", "comma-separated IP addresses to look up")
	_ = c.MarkFlagRequired("ips")
	c.Flags().BoolVar(&dnsbl, "dnsbl", false, "also query DNSBL providers")
	return c
}
