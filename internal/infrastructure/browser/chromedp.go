// Package browser drives a headless Chrome instance through chromedp to
// fill merchant invoicing forms.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/facturasnap/backend/internal/domain/extraction"
)

const (
	defaultProbeTimeout = 2 * time.Second
	defaultWindowWidth  = 1920
	defaultWindowHeight = 1080
)

// Config contains configuration for the chromedp driver.
type Config struct {
	// RemoteURL is the DevTools websocket URL of a remote Chrome instance.
	// If empty, a local browser process is launched per session.
	RemoteURL string
	// Headless mode (default: true)
	Headless bool
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// ExecPath overrides the Chrome binary.
	ExecPath string
	// UserAgent overrides the browser user agent.
	UserAgent string
	// Timezone is an IANA zone applied to every page. Portals validate
	// purchase dates against the local calendar.
	Timezone string
	// ProbeTimeout bounds the presence check used to tell a missing
	// element from one that never became interactable.
	ProbeTimeout time.Duration
	// WindowWidth and WindowHeight size the viewport.
	WindowWidth  int
	WindowHeight int
}

// DefaultConfig returns server-oriented defaults.
func DefaultConfig() Config {
	return Config{
		Headless:     true,
		NoSandbox:    true,
		ProbeTimeout: defaultProbeTimeout,
		WindowWidth:  defaultWindowWidth,
		WindowHeight: defaultWindowHeight,
	}
}

// Chromedp opens one isolated browser per session.
type Chromedp struct {
	config      Config
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedp creates the allocator. No browser is started until Open.
func NewChromedp(cfg Config, logger *zap.Logger) *Chromedp {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.WindowWidth <= 0 || cfg.WindowHeight <= 0 {
		cfg.WindowWidth, cfg.WindowHeight = defaultWindowWidth, defaultWindowHeight
	}

	b := &Chromedp{config: cfg, logger: logger}
	if cfg.RemoteURL != "" {
		b.allocCtx, b.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
	} else {
		b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg)...)
	}
	return b
}

func allocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	return opts
}

func sessionSetup(cfg Config) []chromedp.Action {
	var actions []chromedp.Action
	if cfg.Timezone != "" {
		actions = append(actions, emulation.SetTimezoneOverride(cfg.Timezone))
	}
	return actions
}

// Open launches a browser and returns a session bound to it. The caller
// owns the session and must Close it.
func (b *Chromedp) Open(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, extraction.WrapError(extraction.KindCancelled, "browser launch cancelled", err)
	}

	browserCtx, cancel := chromedp.NewContext(b.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			b.logger.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			b.logger.Warn(fmt.Sprintf(format, args...))
		}),
	)

	// The first Run on the browser context starts the process and must not
	// use a derived context, or cancelling it would kill the browser.
	if err := chromedp.Run(browserCtx, sessionSetup(b.config)...); err != nil {
		cancel()
		return nil, extraction.WrapError(extraction.KindBrowserLaunchFailed, "failed to launch browser", err)
	}

	return &Session{
		ctx:          browserCtx,
		cancel:       cancel,
		probeTimeout: b.config.ProbeTimeout,
		logger:       b.logger,
	}, nil
}

// Shutdown releases the allocator. Open sessions are terminated.
func (b *Chromedp) Shutdown() {
	if b.allocCancel != nil {
		b.allocCancel()
	}
}

// Session is an exclusively owned browser tab. It is not safe for
// concurrent use.
type Session struct {
	ctx          context.Context
	cancel       context.CancelFunc
	probeTimeout time.Duration
	logger       *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// run executes actions on the session's browser, bounded by the deadline
// and cancellation of ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the document to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		if ctx.Err() == context.Canceled {
			return extraction.WrapError(extraction.KindCancelled, "navigation cancelled", err)
		}
		return extraction.WrapError(extraction.KindNavigationFailed, "failed to load invoicing page", err)
	}
	return nil
}

// Fill waits for selector to be interactable and types value into it.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	err := s.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.WaitEnabled(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	return s.classify(ctx, selector, err)
}

// Click waits for selector to be interactable and clicks it.
func (s *Session) Click(ctx context.Context, selector string) error {
	err := s.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.WaitEnabled(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	return s.classify(ctx, selector, err)
}

// Select chooses the option whose value equals value and fires a change
// event. A missing option fails with OptionNotFound.
func (s *Session) Select(ctx context.Context, selector, value string) error {
	var found bool
	err := s.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.WaitEnabled(selector, chromedp.ByQuery),
		chromedp.Evaluate(selectOptionScript(selector, value), &found),
	)
	if err != nil {
		return s.classify(ctx, selector, err)
	}
	if !found {
		return &extraction.Error{
			Kind:     extraction.KindOptionNotFound,
			Message:  "requested option is not offered by the form",
			Selector: selector,
		}
	}
	return nil
}

// Attribute waits for selector to be present and returns attribute name.
func (s *Session) Attribute(ctx context.Context, selector, name string) (string, error) {
	var (
		value string
		ok    bool
	)
	err := s.run(ctx,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.AttributeValue(selector, name, &value, &ok, chromedp.ByQuery),
	)
	if err != nil {
		return "", s.classify(ctx, selector, err)
	}
	if !ok || value == "" {
		return "", &extraction.Error{
			Kind:     extraction.KindElementNotFound,
			Message:  "document link has no " + name,
			Selector: selector,
		}
	}
	return value, nil
}

// Close shuts the browser down. It is safe to call more than once; later
// calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		err := chromedp.Cancel(s.ctx)
		s.cancel()
		if err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = err
		}
	})
	return s.closeErr
}

// classify maps a chromedp failure onto the extraction taxonomy. On a
// timeout it probes the DOM: an absent element means the form markup
// changed, a present one means it never became interactable.
func (s *Session) classify(ctx context.Context, selector string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() == context.Canceled {
		return &extraction.Error{Kind: extraction.KindCancelled, Message: "automation cancelled", Selector: selector, Cause: err}
	}
	if !errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return &extraction.Error{Kind: extraction.KindElementNotFound, Message: "element interaction failed", Selector: selector, Cause: err}
	}

	probeCtx, cancel := context.WithTimeout(context.Background(), s.probeTimeout)
	defer cancel()
	var present bool
	if perr := s.run(probeCtx, chromedp.Evaluate(presenceScript(selector), &present)); perr != nil {
		s.logger.Debug("Element presence probe failed", zap.String("selector", selector), zap.Error(perr))
	}
	if !present {
		return &extraction.Error{Kind: extraction.KindElementNotFound, Message: "element not found in form", Selector: selector, Cause: err}
	}
	return &extraction.Error{Kind: extraction.KindElementTimeout, Message: "element did not become interactable", Selector: selector, Cause: err}
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func presenceScript(selector string) string {
	return fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(selector))
}

func selectOptionScript(selector, value string) string {
	return fmt.Sprintf(`(function(sel, val) {
	const el = document.querySelector(sel);
	if (!el || !el.options) { return false; }
	const opt = Array.from(el.options).find(o => o.value === val);
	if (!opt) { return false; }
	el.value = val;
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
})(%s, %s)`, jsString(selector), jsString(value))
}
