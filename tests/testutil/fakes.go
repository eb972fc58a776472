package testutil

import (
	"context"
	"sync"

	"github.com/facturasnap/backend/internal/domain/extraction"
)

// PassthroughPreprocessor returns its input unchanged.
type PassthroughPreprocessor struct{}

// Preprocess returns data.
func (PassthroughPreprocessor) Preprocess(_ context.Context, data []byte) ([]byte, error) {
	return data, nil
}

// FakeRecognizer returns a fixed text regardless of the image.
type FakeRecognizer struct {
	mu   sync.Mutex
	text string
	err  error
}

// Set replaces the recognition outcome.
func (r *FakeRecognizer) Set(text string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text, r.err = text, err
}

// Recognize returns the configured outcome.
func (r *FakeRecognizer) Recognize(ctx context.Context, _ []byte, _ string, _ extraction.OCRConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", extraction.WrapError(extraction.KindCancelled, "recognition cancelled", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text, r.err
}

// FakeAutomation records runs and returns a configured document URL.
type FakeAutomation struct {
	mu       sync.Mutex
	url      string
	err      error
	runs     int
	requests []extraction.AutomationRequest
}

// NewFakeAutomation returns an automation that succeeds with url.
func NewFakeAutomation(url string) *FakeAutomation {
	return &FakeAutomation{url: url}
}

// Set replaces the run outcome.
func (a *FakeAutomation) Set(url string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.url, a.err = url, err
}

// Run records req and returns the configured outcome.
func (a *FakeAutomation) Run(_ context.Context, _ string, _ extraction.AutomationScript, req extraction.AutomationRequest) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runs++
	a.requests = append(a.requests, req)
	if a.err != nil {
		return "", a.err
	}
	return a.url, nil
}

// Runs returns how many times Run was called.
func (a *FakeAutomation) Runs() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runs
}

// LastRequest returns the most recent request, if any.
func (a *FakeAutomation) LastRequest() (extraction.AutomationRequest, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.requests) == 0 {
		return extraction.AutomationRequest{}, false
	}
	return a.requests[len(a.requests)-1], true
}
