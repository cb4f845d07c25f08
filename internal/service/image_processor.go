package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/njprem/TourBook_APP_BackEnd/internal/media"
	"github.com/njprem/TourBook_APP_BackEnd/internal/repository/ports"
)

// storeImage resizes an upload and puts it under key in bucket.
func storeImage(ctx context.Context, processor media.Processor, storage ports.ObjectStorage, bucket, key string, upload media.Upload, size media.Size) (string, error) {
	if storage == nil {
		return "", fmt.Errorf("image storage not configured")
	}
	if processor == nil {
		processor = media.NewJPEGProcessor()
	}
	result, err := processor.Process(ctx, upload, size)
	if err != nil {
		return "", err
	}
	return storage.Put(ctx, ports.Object{
		Bucket:      bucket,
		Key:         key,
		ContentType: result.ContentType,
		Body:        bytes.NewReader(result.Bytes),
		Size:        int64(len(result.Bytes)),
	})
}

func imageKey(folder, prefix string, at time.Time, suffix string) string {
	name := fmt.Sprintf("%s-%d", prefix, at.Unix())
	if suffix != "" {
		name += "-" + suffix
	}
	return strings.Trim(folder, "/") + "/" + name + ".jpeg"
}
