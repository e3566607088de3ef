// Package exporter delivers exported audit reports to their destination: a
// local directory or an S3-compatible bucket.
package exporter

import "context"

// Sink stores a finished document under name and returns where it went.
type Sink interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}
