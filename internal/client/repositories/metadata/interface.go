package metadata

import (
	"context"
)

// Repository is a durable string-keyed blob store. Get returns (nil, nil)
// for a missing key; Delete of missing keys is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
