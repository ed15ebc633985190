// Package frame holds the decoded-frame representation shared between the
// ingestion path and the expert workers. A Frame is immutable once created;
// ownership passes from the router to exactly one worker queue slot per job.
package frame

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"golang.org/x/image/draw"
)

// JPEGQuality is the re-encode quality used after normalization.
const JPEGQuality = 85

// Frame is one normalized camera frame plus its per-session sequence number.
type Frame struct {
	Sequence  uint64
	Data      []byte // JPEG bytes, already scaled to processing resolution
	Width     int
	Height    int
	Timestamp time.Time
}

// Decode parses JPEG bytes into a Frame without any rescaling.
func Decode(seq uint64, data []byte) (*Frame, error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid JPEG frame: %w", err)
	}
	return &Frame{
		Sequence:  seq,
		Data:      data,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Timestamp: time.Now(),
	}, nil
}

// Normalize decodes JPEG bytes, scales them once by the given factor and
// re-encodes. This is the single resize point of the pipeline; workers always
// receive frames in processed-frame coordinate space. A scale of 1.0 skips
// the re-encode and only validates the JPEG header.
func Normalize(seq uint64, data []byte, scale float64) (*Frame, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale factor %v", scale)
	}
	if scale == 1.0 {
		return Decode(seq, data)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid JPEG frame: %w", err)
	}

	bounds := img.Bounds()
	w := int(float64(bounds.Dx()) * scale)
	h := int(float64(bounds.Dy()) * scale)
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("scale factor %v produces empty frame", scale)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to re-encode frame: %w", err)
	}

	return &Frame{
		Sequence:  seq,
		Data:      buf.Bytes(),
		Width:     w,
		Height:    h,
		Timestamp: time.Now(),
	}, nil
}
