package ports

import (
	"context"
	"io"
)

type Object struct {
	Bucket      string
	Key         string
	ContentType string
	Body        io.Reader
	Size        int64
}

// ObjectStorage stores uploaded media and returns its public URL.
type ObjectStorage interface {
	Put(ctx context.Context, obj Object) (string, error)
}
