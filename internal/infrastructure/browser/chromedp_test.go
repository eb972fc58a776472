package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturasnap/backend/internal/domain/extraction"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Headless)
	assert.True(t, cfg.NoSandbox)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 1920, cfg.WindowWidth)
	assert.Equal(t, 1080, cfg.WindowHeight)
}

func TestNewChromedp_AppliesDefaults(t *testing.T) {
	b := NewChromedp(Config{}, nil)
	defer b.Shutdown()

	assert.Equal(t, defaultProbeTimeout, b.config.ProbeTimeout)
	assert.Equal(t, defaultWindowWidth, b.config.WindowWidth)
	assert.NotNil(t, b.allocCtx)
}

func TestAllocatorOptions(t *testing.T) {
	base := allocatorOptions(Config{Headless: true})
	withExtras := allocatorOptions(Config{Headless: true, NoSandbox: true, ExecPath: "/usr/bin/chromium", UserAgent: "fsnap"})

	assert.Len(t, withExtras, len(base)+3)
}

func TestSessionSetup(t *testing.T) {
	assert.Empty(t, sessionSetup(Config{}))

	actions := sessionSetup(Config{Timezone: "America/Mexico_City"})
	require.Len(t, actions, 1)
	override, ok := actions[0].(*emulation.SetTimezoneOverrideParams)
	require.True(t, ok)
	assert.Equal(t, "America/Mexico_City", override.TimezoneID)
}

func TestScripts(t *testing.T) {
	assert.Equal(t, `document.querySelector("#MainContent_txtRFC") !== null`, presenceScript("#MainContent_txtRFC"))

	script := selectOptionScript(`select[name="cfdi"]`, `G03"); alert("x`)
	assert.Contains(t, script, `"select[name=\"cfdi\"]"`)
	assert.Contains(t, script, `"G03\"); alert(\"x"`)
}

const testForm = `<!DOCTYPE html>
<html><body>
<input id="rfc" type="text">
<input id="locked" type="text" disabled>
<select id="cfdi"><option value="">--</option><option value="G03">Gastos en general</option></select>
<a id="pdf" href="/docs/ABC123.pdf">PDF</a>
<a id="nohref">none</a>
</body></html>`

func findChrome() bool {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func TestSession_AgainstLocalForm(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	if !findChrome() {
		t.Skip("Chrome not installed")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(testForm))
	}))
	defer srv.Close()

	b := NewChromedp(DefaultConfig(), nil)
	defer b.Shutdown()

	ctx := context.Background()
	session, err := b.Open(ctx)
	require.NoError(t, err)
	defer session.Close()

	step := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(ctx, 3*time.Second)
	}

	sctx, cancel := step()
	require.NoError(t, session.Navigate(sctx, srv.URL))
	cancel()

	sctx, cancel = step()
	assert.NoError(t, session.Fill(sctx, "#rfc", "XAXX010101000"))
	cancel()

	sctx, cancel = step()
	assert.NoError(t, session.Select(sctx, "#cfdi", "G03"))
	cancel()

	sctx, cancel = step()
	err = session.Select(sctx, "#cfdi", "P01")
	cancel()
	assert.Equal(t, extraction.KindOptionNotFound, extraction.KindOf(err))

	sctx, cancel = step()
	href, err := session.Attribute(sctx, "#pdf", "href")
	cancel()
	require.NoError(t, err)
	assert.Equal(t, "/docs/ABC123.pdf", href)

	sctx, cancel = step()
	_, err = session.Attribute(sctx, "#nohref", "href")
	cancel()
	assert.Equal(t, extraction.KindElementNotFound, extraction.KindOf(err))

	sctx, cancel = context.WithTimeout(ctx, time.Second)
	err = session.Fill(sctx, "#missing", "x")
	cancel()
	assert.Equal(t, extraction.KindElementNotFound, extraction.KindOf(err))

	sctx, cancel = context.WithTimeout(ctx, time.Second)
	err = session.Fill(sctx, "#locked", "x")
	cancel()
	assert.Equal(t, extraction.KindElementTimeout, extraction.KindOf(err))

	assert.NoError(t, session.Close())
	assert.NoError(t, session.Close())
}
