package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MaxUploadBytes     = 5 << 20
	defaultJPEGQuality = 90
)

var (
	ErrNotAnImage    = errors.New("not an image! Please upload only images")
	ErrImageTooLarge = errors.New("image exceeds the 5MB upload limit")
)

// Size is the exact output box. Images are center-cropped to its aspect ratio
// before scaling.
type Size struct {
	Width  int
	Height int
}

var (
	UserPhoto = Size{Width: 500, Height: 500}
	TourCover = Size{Width: 2000, Height: 1333}
)

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type Result struct {
	Bytes       []byte
	ContentType string
}

type Processor interface {
	Process(ctx context.Context, upload Upload, size Size) (*Result, error)
}

type JPEGProcessor struct {
	quality int
}

func NewJPEGProcessor() *JPEGProcessor {
	return &JPEGProcessor{quality: defaultJPEGQuality}
}

func (p *JPEGProcessor) Process(ctx context.Context, upload Upload, size Size) (*Result, error) {
	if upload.Reader == nil {
		return nil, fmt.Errorf("media: empty reader")
	}
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("media: invalid target size %dx%d", size.Width, size.Height)
	}
	data, err := io.ReadAll(io.LimitReader(upload.Reader, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("media: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotAnImage
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrImageTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	crop := coverRect(src.Bounds(), size)
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("media: encode jpeg: %w", err)
	}
	return &Result{Bytes: out.Bytes(), ContentType: "image/jpeg"}, nil
}

// coverRect is the largest centered region of b with the aspect ratio of size.
func coverRect(b image.Rectangle, size Size) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w*size.Height > h*size.Width {
		cropW := h * size.Width / size.Height
		x0 := b.Min.X + (w-cropW)/2
		return image.Rect(x0, b.Min.Y, x0+cropW, b.Max.Y)
	}
	cropH := w * size.Height / size.Width
	y0 := b.Min.Y + (h-cropH)/2
	return image.Rect(b.Min.X, y0, b.Max.X, y0+cropH)
}
