package service

import (
	"context"
	"io"

	"github.com/njprem/TourBook_APP_BackEnd/internal/media"
)

type stubImageProcessor struct {
	output []byte
	err    error

	calls    int
	last     media.Upload
	lastSize media.Size
}

func (s *stubImageProcessor) Process(ctx context.Context, upload media.Upload, size media.Size) (*media.Result, error) {
	s.calls++
	s.last = upload
	s.lastSize = size
	if s.err != nil {
		return nil, s.err
	}
	if upload.Reader != nil {
		_, _ = io.Copy(io.Discard, upload.Reader)
	}
	return &media.Result{
		Bytes:       append([]byte(nil), s.output...),
		ContentType: "image/jpeg",
	}, nil
}
