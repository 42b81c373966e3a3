package ports

import "context"

// IntervalStore is the sorted interval index contract of §4.D: an ordered
// container keyed by a 64-bit score. Members are canonical serialized
// interval strings; the score is the interval's end_int.
type IntervalStore interface {
	Insert(ctx context.Context, key string, score int64, member string) error
	// QueryFirstGE returns the lowest-scoring member with score >= minScore,
	// or found=false if no such member exists.
	QueryFirstGE(ctx context.Context, key string, minScore int64) (member string, found bool, err error)
	// Rename atomically replaces toKey's contents with fromKey's, then
	// removes fromKey. Readers of toKey never observe a partial state.
	Rename(ctx context.Context, fromKey, toKey string) error
	Cardinality(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string) error
}
