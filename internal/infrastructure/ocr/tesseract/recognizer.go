// Package tesseract recognizes receipt text with the Tesseract engine
// through gosseract. It links against libtesseract via cgo and is kept in
// its own package so the rest of the module builds without it.
package tesseract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"

	"github.com/facturasnap/backend/internal/domain/extraction"
)

// Config controls the recognizer.
type Config struct {
	// MaxConcurrent bounds simultaneous recognitions (0 means unbounded).
	MaxConcurrent int
	// TessdataPrefix overrides the tessdata directory when set.
	TessdataPrefix string
}

// Recognizer runs Tesseract over preprocessed images. A fresh gosseract
// client is created per call; clients are not safe for concurrent use.
type Recognizer struct {
	config Config
	slots  chan struct{}
	logger *zap.Logger
	once   sync.Once

	mu          sync.Mutex
	configDir   string
	configFiles map[int]string
}

// NewRecognizer creates a Recognizer.
func NewRecognizer(cfg Config, logger *zap.Logger) *Recognizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recognizer{config: cfg, logger: logger, configFiles: make(map[int]string)}
	if cfg.MaxConcurrent > 0 {
		r.slots = make(chan struct{}, cfg.MaxConcurrent)
	}
	return r
}

// Recognize returns the text Tesseract reads from image. Empty or
// unintelligible input yields an empty string, not an error.
func (r *Recognizer) Recognize(ctx context.Context, image []byte, language string, cfg extraction.OCRConfig) (string, error) {
	if len(image) == 0 {
		return "", nil
	}
	if r.slots != nil {
		select {
		case r.slots <- struct{}{}:
			defer func() { <-r.slots }()
		case <-ctx.Done():
			return "", extraction.WrapError(extraction.KindCancelled, "recognition cancelled", ctx.Err())
		}
	}

	r.once.Do(func() {
		r.logger.Info("Tesseract recognizer ready", zap.String("version", gosseract.Version()))
	})

	client := gosseract.NewClient()
	defer func() {
		if err := client.Close(); err != nil {
			r.logger.Warn("Failed to close tesseract client", zap.Error(err))
		}
	}()

	if r.config.TessdataPrefix != "" {
		client.SetTessdataPrefix(r.config.TessdataPrefix)
	}
	if err := client.SetLanguage(language); err != nil {
		return "", extraction.WrapError(extraction.KindRecognitionFailed, "failed to set language", err)
	}
	if cfg.EngineMode != extraction.EngineDefault {
		path, err := r.engineModeConfig(cfg.EngineMode)
		if err != nil {
			return "", extraction.WrapError(extraction.KindRecognitionFailed, "failed to prepare engine mode", err)
		}
		if err := client.SetConfigFile(path); err != nil {
			return "", extraction.WrapError(extraction.KindRecognitionFailed, "failed to set engine mode", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
		return "", extraction.WrapError(extraction.KindRecognitionFailed, "failed to set page segmentation mode", err)
	}
	if cfg.CharWhitelist != "" {
		if err := client.SetWhitelist(cfg.CharWhitelist); err != nil {
			return "", extraction.WrapError(extraction.KindRecognitionFailed, "failed to set whitelist", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", extraction.WrapError(extraction.KindInvalidImageFormat, "tesseract rejected image", err)
	}

	start := time.Now()
	text, err := client.Text()
	if err != nil {
		return "", extraction.WrapError(extraction.KindRecognitionFailed, "text recognition failed", err)
	}
	if strings.TrimSpace(text) == "" {
		text = ""
	}
	r.logger.Debug("Receipt text recognized",
		zap.String("language", language),
		zap.Int("engine_mode", cfg.EngineMode),
		zap.Int("page_seg_mode", cfg.PageSegMode),
		zap.Int("chars", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return text, nil
}

// engineModeConfig returns a Tesseract config file selecting mode.
// tessedit_ocr_engine_mode is init-only and is read from the config file
// passed to Init.
func (r *Recognizer) engineModeConfig(mode int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if path, ok := r.configFiles[mode]; ok {
		return path, nil
	}
	if r.configDir == "" {
		dir, err := os.MkdirTemp("", "fsnap-tesseract-")
		if err != nil {
			return "", err
		}
		r.configDir = dir
	}
	path := filepath.Join(r.configDir, fmt.Sprintf("oem%d", mode))
	if err := os.WriteFile(path, []byte(fmt.Sprintf("tessedit_ocr_engine_mode %d\n", mode)), 0o600); err != nil {
		return "", err
	}
	r.configFiles[mode] = path
	return path, nil
}

// Close removes the engine mode config files.
func (r *Recognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.configDir == "" {
		return nil
	}
	err := os.RemoveAll(r.configDir)
	r.configDir = ""
	clear(r.configFiles)
	return err
}
