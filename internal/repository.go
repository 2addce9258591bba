package internal

import (
	"context"
	"io"
)

// Repository is where snapshot exports are preserved: a local
// directory, an S3 bucket, anything that can take a named stream.
type Repository interface {
	Write(ctx context.Context, path string, reader io.Reader) error
	Flush() error
}
