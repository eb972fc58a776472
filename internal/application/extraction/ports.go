// Package extraction orchestrates receipt recognition and the scripted
// invoice-generation flow on merchant portals.
package extraction

import (
	"context"
	"time"

	"github.com/facturasnap/backend/internal/domain/extraction"
	"github.com/google/uuid"
)

// Preprocessor normalizes an encoded photo into a raster ready for OCR.
type Preprocessor interface {
	Preprocess(ctx context.Context, data []byte) ([]byte, error)
}

// Recognizer reads text from a preprocessed raster.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, language string, cfg extraction.OCRConfig) (string, error)
}

// MerchantResolver looks up merchant adapters.
type MerchantResolver interface {
	Resolve(merchantID string) (*extraction.MerchantAdapter, error)
	List() []*extraction.MerchantAdapter
}

// FormSession is one exclusively owned browser tab.
type FormSession interface {
	Navigate(ctx context.Context, url string) error
	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	Select(ctx context.Context, selector, value string) error
	Attribute(ctx context.Context, selector, name string) (string, error)
	Close() error
}

// Browser opens form sessions.
type Browser interface {
	Open(ctx context.Context) (FormSession, error)
}

// BrowserFunc adapts a function to Browser.
type BrowserFunc func(ctx context.Context) (FormSession, error)

// Open calls f(ctx).
func (f BrowserFunc) Open(ctx context.Context) (FormSession, error) {
	return f(ctx)
}

// Automation runs a merchant script and returns the absolute document URL.
type Automation interface {
	Run(ctx context.Context, merchantID string, script extraction.AutomationScript, req extraction.AutomationRequest) (string, error)
}

// DocumentArchiver copies a generated document into long-term storage and
// returns its storage key.
type DocumentArchiver interface {
	Archive(ctx context.Context, userID, invoiceID uuid.UUID, documentURL string) (string, error)
}

// GenerationLock keeps a folio from being generated twice at once. Acquire
// reports false when another holder owns key; otherwise it returns a token
// unique to this hold. Release frees key only while token still holds it.
type GenerationLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}
