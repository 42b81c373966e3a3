package ports

import "context"

// FeedSourceConfig is one operator-managed row in the feed source
// registry: which plugin kind to run, whether it is enabled, its
// abort-on-fail policy, and any plugin-specific parameters (URLs, API
// keys, zone names).
type FeedSourceConfig struct {
	Name        string
	Kind        string
	Enabled     bool
	AbortOnFail bool
	Params      map[string]string
}

// FeedSourceRegistry lets operators enable, disable and tune feed plugins
// without a redeploy. It does not curate list content — only which
// plugins run and how.
type FeedSourceRegistry interface {
	ListEnabled(ctx context.Context) ([]FeedSourceConfig, error)
	Create(ctx context.Context, cfg FeedSourceConfig) error
	Update(ctx context.Context, cfg FeedSourceConfig) error
	Delete(ctx context.Context, name string) error
}
