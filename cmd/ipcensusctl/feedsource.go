package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	pbv1 "github.com/snisarenko-labs/ipcensus/api/proto/ipcensus/v1"
)

func newFeedSourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedsource",
		Short: "Manage feed sources",
	}

	cmd.AddCommand(
		newFeedSourceListCmd(),
		newFeedSourceCreateCmd(),
		newFeedSourceUpdateCmd(),
		newFeedSourceDeleteCmd(),
	)

	return cmd
}

func newFeedSourceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured feed sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := getClient(cmd).ListFeedSources(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range resp.Sources {
				cmd.Printf("%s\tkind=%s\tenabled=%v\tabort_on_fail=%v\n", s.Name, s.Kind, s.Enabled, s.AbortOnFail)
			}
			return nil
		},
	}
}

func feedSourceFlags(c *cobra.Command, src *pbv1.FeedSourceConfig, params *[]string) {
	c.Flags().StringVar(&src.Name, "name", "", "feed source name")
	c.Flags().StringVar(&src.Kind, "kind", "", "feed plugin kind (simplelist|structuredjson|zipcsv)")
	c.Flags().BoolVar(&src.Enabled, "enabled", true, "whether the source is fetched during updates")
	c.Flags().BoolVar(&src.AbortOnFail, "abort-on-fail", false, "abort the whole update if this source fails")
	c.Flags().StringArrayVar(params, "param", nil, "plugin parameter as key=value, may be repeated")
	_ = c.MarkFlagRequired("name")
}

func parseParams(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("ipcensusctl: invalid --param %q, want key=value", kv)
		}
		out[key] = value
	}
	return out, nil
}

func newFeedSourceCreateCmd() *cobra.Command {
	src := &pbv1.FeedSourceConfig{}
	var params []string

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a feed source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := parseParams(params)
			if err != nil {
				return err
			}
			src.Params = p
			return getClient(cmd).CreateFeedSource(cmd.Context(), src)
		},
	}
	feedSourceFlags(c, src, &params)
	_ = c.MarkFlagRequired("kind")
	return c
}

func newFeedSourceUpdateCmd() *cobra.Command {
	src := &pbv1.FeedSourceConfig{}
	var params []string

	c := &cobra.Command{
		Use:   "update",
		Short: "Update a feed source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := parseParams(params)
			if err != nil {
				return err
			}
			src.Params = p
			return getClient(cmd).UpdateFeedSource(cmd.Context(), src)
		},
	}
	feedSourceFlags(c, src, &params)
	return c
}

func newFeedSourceDeleteCmd() *cobra.Command {
	var name string

	c := &cobra.Command{
		Use:   "delete",
		Short: "Delete a feed source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return getClient(cmd).DeleteFeedSource(cmd.Context(), name)
		},
	}
	c.Flags().StringVar(&name, "name", "", "feed source name")
	_ = c.MarkFlagRequired("name")
	return c
}
