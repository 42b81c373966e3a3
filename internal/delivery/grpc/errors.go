package grpcserver

import "errors"

var (
	ErrLookupNotConfigured   = errors.New("lookup service not configured")
	ErrUpdateNotConfigured   = errors.New("update coordinator not configured")
	ErrRegistryNotConfigured = errors.New("feed source registry not configured")
	ErrInvalidIP             = errors.New("invalid IP address")
	ErrEmptyFeedSourceName   = errors.New("feed source name is required")
)
