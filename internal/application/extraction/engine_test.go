package extraction

import (
	"context"
	"errors"
	"runtime/pprof"
	"testing"
	"time"

	"github.com/facturasnap/backend/internal/domain/extraction"
	"github.com/facturasnap/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEngine_Run_Success(t *testing.T) {
	session := newFakeSession()
	engine := NewEngine(browserFor(session), time.Second, nil, zap.NewNop())

	url, err := engine.Run(context.Background(), "super-aki", testScript(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "http://portal.test/tickets/Descargas/factura-482931.pdf", url)

	assert.Equal(t, []string{navigateCall, "#rfc", "#byFolio", "#folio", "#cfdi", "#regime", "#submit", "#pdf"}, session.calls)
	assert.Equal(t, "http://portal.test/tickets/Paginas/Captura.aspx", session.values[navigateCall])
	assert.Equal(t, "CSU010203AB1", session.values["#rfc"])
	assert.Equal(t, "482931", session.values["#folio"])
	assert.Equal(t, "G03 - Gastos en general", session.values["#cfdi"])
	assert.Equal(t, 1, session.closeCount())
}

func TestEngine_Run_AbsoluteHref(t *testing.T) {
	session := newFakeSession()
	session.href = "https://cdn.portal.test/f.pdf"
	engine := NewEngine(browserFor(session), time.Second, nil, zap.NewNop())

	url, err := engine.Run(context.Background(), "super-aki", testScript(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.portal.test/f.pdf", url)
}

func TestEngine_Run_FailureAtEveryStateClosesSessionOnce(t *testing.T) {
	elementErr := extraction.NewError(extraction.KindElementNotFound, "missing")
	tests := []struct {
		failOn string
		err    error
		state  extraction.State
		kind   extraction.Kind
	}{
		{navigateCall, errors.New("net::ERR_NAME_NOT_RESOLVED"), extraction.StatePageLoaded, extraction.KindNavigationFailed},
		{"#rfc", elementErr, extraction.StateTaxIDEntered, extraction.KindElementNotFound},
		{"#byFolio", elementErr, extraction.StateFolioEntered, extraction.KindElementNotFound},
		{"#folio", errors.New("boom"), extraction.StateFolioEntered, extraction.KindElementNotFound},
		{"#cfdi", extraction.ErrOptionNotFound, extraction.StateCFDIUsageSelected, extraction.KindOptionNotFound},
		{"#regime", extraction.ErrOptionNotFound, extraction.StateTaxRegimeSelected, extraction.KindOptionNotFound},
		{"#submit", elementErr, extraction.StateSubmitted, extraction.KindElementNotFound},
		{"#pdf", elementErr, extraction.StateDocumentLinkExtracted, extraction.KindElementNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.state.String()+"/"+tt.failOn, func(t *testing.T) {
			session := newFakeSession()
			session.failOn = tt.failOn
			session.failErr = tt.err
			engine := NewEngine(browserFor(session), time.Second, nil, zap.NewNop())

			url, err := engine.Run(context.Background(), "super-aki", testScript(), testRequest())
			require.Error(t, err)
			assert.Empty(t, url)

			var typed *extraction.Error
			require.ErrorAs(t, err, &typed)
			assert.Equal(t, tt.kind, typed.Kind)
			assert.Equal(t, tt.state, typed.State)
			assert.Equal(t, 1, session.closeCount())
			assert.Equal(t, tt.failOn, session.calls[len(session.calls)-1], "no call may follow the failing one")
		})
	}
}

func TestEngine_Run_LaunchFailure(t *testing.T) {
	engine := NewEngine(BrowserFunc(func(ctx context.Context) (FormSession, error) {
		return nil, errors.New("chrome not found")
	}), time.Second, nil, zap.NewNop())

	_, err := engine.Run(context.Background(), "super-aki", testScript(), testRequest())

	var typed *extraction.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, extraction.KindBrowserLaunchFailed, typed.Kind)
	assert.Equal(t, extraction.StateSessionOpen, typed.State)
}

func TestEngine_Run_ElementNeverInteractable(t *testing.T) {
	session := newFakeSession()
	session.failOn = "#rfc"
	session.block = true
	engine := NewEngine(browserFor(session), 20*time.Millisecond, nil, zap.NewNop())

	url, err := engine.Run(context.Background(), "super-aki", testScript(), testRequest())

	assert.Empty(t, url)
	assert.Equal(t, extraction.KindElementTimeout, extraction.KindOf(err))
	assert.Equal(t, 1, session.closeCount())
}

func TestEngine_Run_ScriptTimeoutOverridesEngine(t *testing.T) {
	session := newFakeSession()
	session.failOn = "#submit"
	session.block = true
	engine := NewEngine(browserFor(session), time.Hour, nil, zap.NewNop())
	script := testScript()
	script.StepTimeout = 10 * time.Millisecond

	_, err := engine.Run(context.Background(), "super-aki", script, testRequest())
	assert.Equal(t, extraction.KindElementTimeout, extraction.KindOf(err))
}

func TestEngine_Run_CallerCancellation(t *testing.T) {
	session := newFakeSession()
	session.failOn = "#folio"
	session.block = true
	engine := NewEngine(browserFor(session), time.Minute, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := engine.Run(ctx, "super-aki", testScript(), testRequest())
	assert.Equal(t, extraction.KindCancelled, extraction.KindOf(err))
	assert.Equal(t, 1, session.closeCount())
}

func TestEngine_Run_EmptyHref(t *testing.T) {
	session := newFakeSession()
	session.href = ""
	engine := NewEngine(browserFor(session), time.Second, nil, zap.NewNop())

	_, err := engine.Run(context.Background(), "super-aki", testScript(), testRequest())
	assert.Equal(t, extraction.KindElementNotFound, extraction.KindOf(err))
	assert.Equal(t, 1, session.closeCount())
}

func TestEngine_Run_MalformedHrefIsAutomationFault(t *testing.T) {
	session := newFakeSession()
	session.href = "Descargas/%zz.pdf"
	engine := NewEngine(browserFor(session), time.Second, nil, zap.NewNop())

	_, err := engine.Run(context.Background(), "super-aki", testScript(), testRequest())
	require.Error(t, err)
	assert.Equal(t, extraction.KindElementNotFound, extraction.KindOf(err))
	assert.True(t, extraction.KindOf(err).IsAutomationFault())

	var typed *extraction.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, extraction.StateDocumentLinkExtracted, typed.State)
	assert.Equal(t, 1, session.closeCount())
}

func TestEngine_Run_ProfilingLabels(t *testing.T) {
	session := newFakeSession()
	var operation, merchant string
	browser := BrowserFunc(func(ctx context.Context) (FormSession, error) {
		operation, _ = pprof.Label(ctx, telemetry.ProfilingLabelOperation)
		merchant, _ = pprof.Label(ctx, telemetry.ProfilingLabelMerchantID)
		return session, nil
	})
	engine := NewEngine(browser, time.Second, nil, zap.NewNop())

	_, err := engine.Run(context.Background(), "super-aki", testScript(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, telemetry.ProfilingOperationAutomation, operation)
	assert.Equal(t, "super-aki", merchant)
}
