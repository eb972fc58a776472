package extraction

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ExtractionRequest is one receipt to be recognized.
type ExtractionRequest struct {
	Image      []byte
	MerchantID string
}

// Validate rejects requests with no image or no merchant.
func (r ExtractionRequest) Validate() error {
	if len(r.Image) == 0 {
		return NewError(KindInvalidInput, "image is required")
	}
	if NormalizeMerchantID(r.MerchantID) == "" {
		return NewError(KindInvalidInput, "merchant id is required")
	}
	return nil
}

// ExtractionResult is the folio and any extra merchant fields found on a
// receipt.
type ExtractionResult struct {
	MerchantID string
	Folio      string
	Fields     map[string]string
	RawText    string
}

// ExtractFolio applies pattern to rawText and returns the first capture
// group. Recognized text is folded to unaccented form before matching so a
// pattern written without accents also matches "FACTURACIÓN".
func ExtractFolio(rawText string, pattern *regexp.Regexp) (string, error) {
	if pattern == nil {
		return "", NewError(KindInvalidInput, "pattern is required")
	}
	value, ok := firstGroup(FoldText(rawText), pattern)
	if !ok {
		return "", ErrFolioNotFound
	}
	return value, nil
}

// ExtractFields applies every extra field pattern of adapter to rawText.
// Fields that do not match are omitted.
func ExtractFields(rawText string, adapter *MerchantAdapter) map[string]string {
	folded := FoldText(rawText)
	out := make(map[string]string)
	for _, name := range adapter.FieldNames() {
		re, _ := adapter.FieldPattern(name)
		if v, ok := firstGroup(folded, re); ok {
			out[name] = v
		}
	}
	return out
}

func firstGroup(text string, pattern *regexp.Regexp) (string, bool) {
	m := pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	return v, v != ""
}

// FoldText removes combining marks (accents) from text.
func FoldText(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}
