package extraction

import (
	"regexp"
	"sort"
	"strings"
)

// Tesseract engine modes.
const (
	EngineLegacy        = 0
	EngineLSTM          = 1
	EngineLegacyAndLSTM = 2
	EngineDefault       = 3
)

// PageSegSingleBlock is the page segmentation mode for one uniform block
// of text, which fits a receipt layout.
const PageSegSingleBlock = 6

// OCRConfig tunes the recognition engine for a merchant's receipts.
type OCRConfig struct {
	EngineMode    int
	PageSegMode   int
	CharWhitelist string
}

// DefaultOCRConfig returns the receipt-oriented defaults.
func DefaultOCRConfig() OCRConfig {
	return OCRConfig{
		EngineMode:  EngineLSTM,
		PageSegMode: PageSegSingleBlock,
	}
}

// MerchantAdapter is the static capability set of one supported merchant.
// Adapters are immutable once registered.
type MerchantAdapter struct {
	id           string
	displayName  string
	ocrLanguage  string
	ocrConfig    OCRConfig
	folioPattern *regexp.Regexp
	fields       map[string]*regexp.Regexp
	script       *AutomationScript
}

// MerchantAdapterParams are the inputs for NewMerchantAdapter.
type MerchantAdapterParams struct {
	ID           string
	DisplayName  string
	OCRLanguage  string
	OCRConfig    OCRConfig
	FolioPattern *regexp.Regexp
	Fields       map[string]*regexp.Regexp
	Script       *AutomationScript
}

// NewMerchantAdapter validates params and builds an adapter.
func NewMerchantAdapter(p MerchantAdapterParams) (*MerchantAdapter, error) {
	id := NormalizeMerchantID(p.ID)
	if id == "" {
		return nil, NewError(KindInvalidInput, "merchant id is required")
	}
	if p.FolioPattern == nil {
		return nil, NewError(KindInvalidInput, "merchant "+id+": folio pattern is required")
	}
	if p.FolioPattern.NumSubexp() < 1 {
		return nil, NewError(KindInvalidInput, "merchant "+id+": folio pattern needs a capture group")
	}
	for name, re := range p.Fields {
		if re == nil || re.NumSubexp() < 1 {
			return nil, NewError(KindInvalidInput, "merchant "+id+": field "+name+" needs a capture group")
		}
	}
	if p.Script != nil {
		if err := p.Script.Validate(); err != nil {
			return nil, WrapError(KindInvalidInput, "merchant "+id+": invalid automation script", err)
		}
	}
	lang := p.OCRLanguage
	if lang == "" {
		lang = "spa"
	}
	name := p.DisplayName
	if name == "" {
		name = id
	}
	fields := make(map[string]*regexp.Regexp, len(p.Fields))
	for k, v := range p.Fields {
		fields[k] = v
	}
	var script *AutomationScript
	if p.Script != nil {
		cp := *p.Script
		cp.Steps = append([]Step(nil), p.Script.Steps...)
		script = &cp
	}
	return &MerchantAdapter{
		id:           id,
		displayName:  name,
		ocrLanguage:  lang,
		ocrConfig:    p.OCRConfig,
		folioPattern: p.FolioPattern,
		fields:       fields,
		script:       script,
	}, nil
}

// ID returns the merchant identifier.
func (m *MerchantAdapter) ID() string { return m.id }

// DisplayName returns the human readable merchant name.
func (m *MerchantAdapter) DisplayName() string { return m.displayName }

// OCRLanguage returns the tesseract language hint.
func (m *MerchantAdapter) OCRLanguage() string { return m.ocrLanguage }

// OCRConfig returns the recognition settings.
func (m *MerchantAdapter) OCRConfig() OCRConfig { return m.ocrConfig }

// FolioPattern returns the folio regular expression.
func (m *MerchantAdapter) FolioPattern() *regexp.Regexp { return m.folioPattern }

// FieldNames returns the extra field names in sorted order.
func (m *MerchantAdapter) FieldNames() []string {
	names := make([]string, 0, len(m.fields))
	for k := range m.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FieldPattern returns the pattern for an extra field.
func (m *MerchantAdapter) FieldPattern(name string) (*regexp.Regexp, bool) {
	re, ok := m.fields[name]
	return re, ok
}

// SupportsAutomation reports whether invoice generation is available.
func (m *MerchantAdapter) SupportsAutomation() bool { return m.script != nil }

// Script returns a copy of the automation script.
func (m *MerchantAdapter) Script() (AutomationScript, bool) {
	if m.script == nil {
		return AutomationScript{}, false
	}
	cp := *m.script
	cp.Steps = append([]Step(nil), m.script.Steps...)
	return cp, true
}

// NormalizeMerchantID lower-cases id and strips a leading slash, so both
// "super-aki" and "/super-aki" address the same adapter.
func NormalizeMerchantID(id string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(id), "/"))
}
