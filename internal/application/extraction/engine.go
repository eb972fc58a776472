package extraction

import (
	"context"
	"errors"
	"time"

	"github.com/facturasnap/backend/internal/domain/extraction"
	"github.com/facturasnap/backend/internal/infrastructure/logger"
	"github.com/facturasnap/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultStepTimeout bounds each transition when neither the script nor
// the engine configures one.
const DefaultStepTimeout = 10 * time.Second

// Engine interprets automation scripts against a Browser. Each run owns a
// single session that is closed exactly once on every exit path.
type Engine struct {
	browser     Browser
	stepTimeout time.Duration
	metrics     *telemetry.InvoicingMetrics
	logger      *zap.Logger
}

// NewEngine creates an Engine. metrics may be nil.
func NewEngine(browser Browser, stepTimeout time.Duration, metrics *telemetry.InvoicingMetrics, log *zap.Logger) *Engine {
	if stepTimeout <= 0 {
		stepTimeout = DefaultStepTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{browser: browser, stepTimeout: stepTimeout, metrics: metrics, logger: log}
}

// Run drives script to completion and returns the document URL. Failures
// are *extraction.Error values annotated with the state they occurred in.
func (e *Engine) Run(ctx context.Context, merchantID string, script extraction.AutomationScript, req extraction.AutomationRequest) (documentURL string, err error) {
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels(telemetry.ProfilingOperationAutomation, merchantID), func(ctx context.Context) {
		documentURL, err = e.run(ctx, merchantID, script, req)
	})
	return documentURL, err
}

func (e *Engine) run(ctx context.Context, merchantID string, script extraction.AutomationScript, req extraction.AutomationRequest) (documentURL string, err error) {
	log := logger.Enrich(ctx, e.logger).With(zap.String("merchant_id", merchantID))
	ctx, span := telemetry.StartSpan(ctx, "automation.run", telemetry.SpanAttrMerchantID, merchantID)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	timeout := script.StepTimeout
	if timeout <= 0 {
		timeout = e.stepTimeout
	}

	state := extraction.StateSessionOpen
	session, err := e.enter(ctx, state, func(ctx context.Context) (FormSession, error) {
		return e.browser.Open(ctx)
	})
	if err != nil {
		return "", e.fail(ctx, log, merchantID, state, "", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warn("Failed to close browser session", zap.Error(cerr))
		}
		log.Debug("Automation state", zap.Stringer("state", extraction.StateSessionClosed))
	}()

	state = extraction.StatePageLoaded
	if _, err := e.enter(ctx, state, func(ctx context.Context) (FormSession, error) {
		stepCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return nil, session.Navigate(stepCtx, script.StartURL)
	}); err != nil {
		return "", e.fail(ctx, log, merchantID, state, "", err)
	}

	for _, step := range script.Steps {
		state = step.State
		var href string
		_, err := e.enter(ctx, state, func(ctx context.Context) (FormSession, error) {
			stepCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			var err error
			href, err = runStep(stepCtx, session, step, req)
			return nil, err
		})
		if err != nil {
			return "", e.fail(ctx, log, merchantID, state, step.Selector, err)
		}
		if step.Action == extraction.ActionExtractLink {
			if href == "" {
				return "", e.fail(ctx, log, merchantID, state, step.Selector,
					extraction.NewError(extraction.KindElementNotFound, "document link has no href"))
			}
			documentURL, err = script.ResolveDocumentURL(href)
			if err != nil {
				return "", e.fail(ctx, log, merchantID, state, step.Selector, err)
			}
		}
	}

	if documentURL == "" {
		return "", e.fail(ctx, log, merchantID, state, "",
			extraction.NewError(extraction.KindElementNotFound, "script finished without a document link"))
	}
	log.Info("Automation completed", zap.String("document_url", documentURL))
	return documentURL, nil
}

// enter runs fn inside a span for state.
func (e *Engine) enter(ctx context.Context, state extraction.State, fn func(context.Context) (FormSession, error)) (FormSession, error) {
	ctx, span := telemetry.StartSpan(ctx, "automation."+state.String(), telemetry.SpanAttrState, state.String())
	defer span.End()
	s, err := fn(ctx)
	telemetry.RecordError(span, err)
	return s, err
}

func runStep(ctx context.Context, s FormSession, step extraction.Step, req extraction.AutomationRequest) (string, error) {
	switch step.Action {
	case extraction.ActionFill:
		return "", s.Fill(ctx, step.Selector, req.Value(step))
	case extraction.ActionClick:
		return "", s.Click(ctx, step.Selector)
	case extraction.ActionSelect:
		return "", s.Select(ctx, step.Selector, req.Value(step))
	case extraction.ActionExtractLink:
		return s.Attribute(ctx, step.Selector, "href")
	}
	return "", extraction.NewError(extraction.KindInvalidInput, "unknown action "+string(step.Action))
}

// fail converts err into a typed error tagged with state and selector,
// then records it.
func (e *Engine) fail(ctx context.Context, log *zap.Logger, merchantID string, state extraction.State, selector string, err error) error {
	typed := annotate(ctx, state, selector, err)
	e.metrics.RecordStateFailure(ctx, merchantID, state.String())
	log.Warn("Automation failed",
		zap.Stringer("state", state),
		zap.String("kind", string(typed.Kind)),
		zap.String("selector", typed.Selector),
		zap.Error(typed.Cause),
	)
	return typed
}

func annotate(ctx context.Context, state extraction.State, selector string, err error) *extraction.Error {
	var typed *extraction.Error
	if errors.As(err, &typed) {
		out := *typed
		if out.State == extraction.StateUnknown {
			out.State = state
		}
		if out.Selector == "" {
			out.Selector = selector
		}
		return &out
	}

	kind := extraction.KindElementNotFound
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		kind = extraction.KindCancelled
	case errors.Is(err, context.DeadlineExceeded):
		kind = extraction.KindElementTimeout
	case state == extraction.StateSessionOpen:
		kind = extraction.KindBrowserLaunchFailed
	case state == extraction.StatePageLoaded:
		kind = extraction.KindNavigationFailed
	}
	return &extraction.Error{
		Kind:     kind,
		Message:  "automation failed",
		State:    state,
		Selector: selector,
		Cause:    err,
	}
}
