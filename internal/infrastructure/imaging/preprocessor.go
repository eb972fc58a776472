// Package imaging normalizes receipt photos before text recognition.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/facturasnap/backend/internal/domain/extraction"
)

// Config controls the preprocessing pipeline.
type Config struct {
	// MinHeight is the height below which images are upscaled.
	MinHeight int
	// TargetHeight is the height small images are upscaled to.
	TargetHeight int
	// MaxPixels rejects decoded images larger than this (0 disables).
	MaxPixels int
	// Contrast is passed to imaging.AdjustContrast (range -100..100).
	Contrast float64
}

// DefaultConfig returns receipt-oriented defaults.
func DefaultConfig() Config {
	return Config{
		MinHeight:    800,
		TargetHeight: 1200,
		MaxPixels:    40_000_000,
		Contrast:     20,
	}
}

// Preprocessor decodes an encoded photo, converts it to grayscale and
// upscales small captures. The result is a PNG buffer.
type Preprocessor struct {
	config Config
	logger *zap.Logger
}

// NewPreprocessor creates a Preprocessor.
func NewPreprocessor(cfg Config, logger *zap.Logger) *Preprocessor {
	if cfg.TargetHeight <= 0 {
		cfg.TargetHeight = DefaultConfig().TargetHeight
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preprocessor{config: cfg, logger: logger}
}

// Preprocess returns a normalized PNG raster. Empty or undecodable input
// fails with InvalidImageFormat.
func (p *Preprocessor) Preprocess(ctx context.Context, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, extraction.NewError(extraction.KindInvalidImageFormat, "image payload is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, extraction.WrapError(extraction.KindCancelled, "preprocessing cancelled", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, extraction.WrapError(extraction.KindInvalidImageFormat, "unrecognized image format", err)
	}
	if p.config.MaxPixels > 0 && cfg.Width*cfg.Height > p.config.MaxPixels {
		return nil, extraction.NewError(extraction.KindInvalidImageFormat, "image dimensions exceed limit")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, extraction.WrapError(extraction.KindInvalidImageFormat, "image could not be decoded", err)
	}

	out := imaging.Grayscale(img)
	if p.config.Contrast != 0 {
		out = imaging.AdjustContrast(out, p.config.Contrast)
	}
	if h := out.Bounds().Dy(); p.config.MinHeight > 0 && h < p.config.MinHeight {
		out = imaging.Resize(out, 0, p.config.TargetHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, extraction.WrapError(extraction.KindInvalidImageFormat, "image could not be encoded", err)
	}

	p.logger.Debug("Receipt image preprocessed",
		zap.String("format", format),
		zap.Int("width", out.Bounds().Dx()),
		zap.Int("height", out.Bounds().Dy()),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

// DecodeBase64 decodes a base64 image payload, accepting an optional
// data-URL prefix ("data:image/jpeg;base64,").
func DecodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, extraction.NewError(extraction.KindInvalidInput, "image is required")
	}
	if strings.HasPrefix(payload, "data:") {
		if i := strings.Index(payload, ","); i >= 0 {
			payload = payload[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return nil, extraction.WrapError(extraction.KindInvalidImageFormat, "image is not valid base64", err)
	}
	if len(data) == 0 {
		return nil, extraction.NewError(extraction.KindInvalidImageFormat, "image payload is empty")
	}
	return data, nil
}
