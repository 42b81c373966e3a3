package ports

import "context"

// FeedMetadata describes a feed plugin for the update coordinator's
// planning and reporting: whether a fetch failure for this source should
// abort the whole update, or merely be logged and its contribution
// omitted from the cycle.
type FeedMetadata struct {
	Name        string
	Version     string
	Description string
	AbortOnFail bool
}

// FeedPlugin fetches one external source and writes a canonical line
// stream of (start_int, end_int, tag_json) to its staging file. Retry,
// logging and timeout behavior are composed around a plugin by its
// caller, not inherited from a base type.
type FeedPlugin interface {
	Metadata() FeedMetadata
	Load(ctx context.Context, stagingPath string) error
	Validate(stagingPath string) error
}
