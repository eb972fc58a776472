package merchant

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturasnap/backend/internal/domain/extraction"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader(nil)
	require.NoError(t, err)
	return l
}

func TestLoader_BuiltinRegistry(t *testing.T) {
	reg, err := newTestLoader(t).LoadRegistry("")
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())

	t.Run("super-aki", func(t *testing.T) {
		a, err := reg.Resolve("/super-aki")
		require.NoError(t, err)
		assert.Equal(t, "Super Aki", a.DisplayName())
		assert.Equal(t, "spa", a.OCRLanguage())
		assert.Equal(t, extraction.PageSegSingleBlock, a.OCRConfig().PageSegMode)
		assert.Equal(t, extraction.EngineLSTM, a.OCRConfig().EngineMode)
		assert.Contains(t, a.OCRConfig().CharWhitelist, "#:")
		assert.Contains(t, a.OCRConfig().CharWhitelist, " ")

		folio, err := extraction.ExtractFolio("FOLIO FACTURACION: 482931", a.FolioPattern())
		require.NoError(t, err)
		assert.Equal(t, "482931", folio)

		script, ok := a.Script()
		require.True(t, ok)
		assert.Equal(t, "http://factura.superaki.mx/tickets/Paginas/FrmCapturaTicket.aspx", script.StartURL)
		assert.Zero(t, script.StepTimeout, "automation.step_timeout applies")
		require.Len(t, script.Steps, 8)
		assert.Equal(t, extraction.Step{
			State:    extraction.StateTaxIDEntered,
			Action:   extraction.ActionFill,
			Selector: "#MainContent_txtRFC",
			Value:    extraction.ValueTaxID,
		}, script.Steps[0])
		last := script.Steps[len(script.Steps)-1]
		assert.Equal(t, extraction.ActionExtractLink, last.Action)
		assert.Equal(t, "#MainContent_aPDF", last.Selector)
	})

	t.Run("bodega-aurrera has no automation", func(t *testing.T) {
		a, err := reg.Resolve("bodega-aurrera")
		require.NoError(t, err)
		assert.False(t, a.SupportsAutomation())
		assert.Equal(t, []string{"cp", "tc"}, a.FieldNames())
	})
}

func TestLoader_ExtraDirectory(t *testing.T) {
	dir := t.TempDir()
	def := `
id: chedraui
name: Chedraui
folio_pattern: 'TICKET\s*(\d+)'
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chedraui.yml"), []byte(def), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o600))

	reg, err := newTestLoader(t).LoadRegistry(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Len())

	a, err := reg.Resolve("chedraui")
	require.NoError(t, err)
	assert.Equal(t, extraction.DefaultOCRConfig().PageSegMode, a.OCRConfig().PageSegMode)
	assert.Equal(t, "spa", a.OCRLanguage())
}

func TestLoader_Parse_StepTimeoutOverride(t *testing.T) {
	doc := `id: soriana
folio_pattern: '(\d+)'
automation:
  start_url: http://example.mx/
  step_timeout: 3s
  steps:
    - {state: document_link_extracted, action: extract_link, selector: "#pdf"}
`
	a, err := newTestLoader(t).Parse([]byte(doc))
	require.NoError(t, err)
	script, ok := a.Script()
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, script.StepTimeout)
}

func TestLoader_DuplicateOfBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dup.yaml"),
		[]byte("id: super-aki\nfolio_pattern: '(\\d+)'\n"), 0o600))

	_, err := newTestLoader(t).LoadRegistry(dir)
	require.Error(t, err)
}

func TestLoader_Parse_Rejects(t *testing.T) {
	l := newTestLoader(t)
	tests := map[string]string{
		"missing folio pattern": "id: x\n",
		"bad id":                "id: 'Has Space'\nfolio_pattern: '(\\d+)'\n",
		"unknown key":           "id: x\nfolio_pattern: '(\\d+)'\ncolor: red\n",
		"bad regexp":            "id: x\nfolio_pattern: '(\\d+'\n",
		"engine mode range":     "id: x\nfolio_pattern: '(\\d+)'\nocr:\n  engine_mode: 9\n",
		"unknown action": `id: x
folio_pattern: '(\d+)'
automation:
  start_url: http://example.mx/
  steps:
    - {state: submitted, action: hover, selector: "#a"}
`,
		"script without link extraction": `id: x
folio_pattern: '(\d+)'
automation:
  start_url: http://example.mx/
  steps:
    - {state: submitted, action: click, selector: "#a"}
`,
		"not yaml": "{{{",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			a, err := l.Parse([]byte(doc))
			assert.Nil(t, a)
			assert.Error(t, err)
		})
	}
}
