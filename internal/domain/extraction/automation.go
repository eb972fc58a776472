package extraction

import (
	"strings"
)

// State is a step of the invoice-generation state machine. States are
// totally ordered; a run only ever moves forward.
type State int

// Automation states in execution order.
const (
	StateUnknown State = iota
	StateSessionOpen
	StatePageLoaded
	StateTaxIDEntered
	StateFolioEntered
	StateCFDIUsageSelected
	StateTaxRegimeSelected
	StateSubmitted
	StateDocumentLinkExtracted
	StateSessionClosed
)

var stateNames = map[State]string{
	StateUnknown:               "unknown",
	StateSessionOpen:           "session_open",
	StatePageLoaded:            "page_loaded",
	StateTaxIDEntered:          "tax_id_entered",
	StateFolioEntered:          "folio_entered",
	StateCFDIUsageSelected:     "cfdi_usage_selected",
	StateTaxRegimeSelected:     "tax_regime_selected",
	StateSubmitted:             "submitted",
	StateDocumentLinkExtracted: "document_link_extracted",
	StateSessionClosed:         "session_closed",
}

// String returns the snake_case state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return stateNames[StateUnknown]
}

// ParseState parses a snake_case state name.
func ParseState(name string) (State, bool) {
	name = strings.TrimSpace(strings.ToLower(name))
	for s, n := range stateNames {
		if n == name && s != StateUnknown {
			return s, true
		}
	}
	return StateUnknown, false
}

// IsStepState reports whether scripted steps may run in this state.
// Session open/close and navigation are owned by the engine.
func (s State) IsStepState() bool {
	return s > StatePageLoaded && s < StateSessionClosed
}

// AutomationRequest carries the buyer fields typed into the merchant form.
type AutomationRequest struct {
	TaxID           string
	Folio           string
	CFDIUsage       string
	TaxRegimeOption string
}

// Normalize trims whitespace and upper-cases the tax id.
func (r AutomationRequest) Normalize() AutomationRequest {
	return AutomationRequest{
		TaxID:           strings.ToUpper(strings.TrimSpace(r.TaxID)),
		Folio:           strings.TrimSpace(r.Folio),
		CFDIUsage:       strings.TrimSpace(r.CFDIUsage),
		TaxRegimeOption: strings.TrimSpace(r.TaxRegimeOption),
	}
}

// Validate checks that every field is present.
func (r AutomationRequest) Validate() error {
	missing := make([]string, 0, 4)
	if r.TaxID == "" {
		missing = append(missing, "taxId")
	}
	if r.Folio == "" {
		missing = append(missing, "folio")
	}
	if r.CFDIUsage == "" {
		missing = append(missing, "cfdiUsage")
	}
	if r.TaxRegimeOption == "" {
		missing = append(missing, "taxRegimeOption")
	}
	if len(missing) > 0 {
		return NewError(KindInvalidInput, "missing fields: "+strings.Join(missing, ", "))
	}
	return nil
}

// Value resolves a step's value source against the request.
func (r AutomationRequest) Value(step Step) string {
	switch step.Value {
	case ValueTaxID:
		return r.TaxID
	case ValueFolio:
		return r.Folio
	case ValueCFDIUsage:
		return r.CFDIUsage
	case ValueTaxRegime:
		return r.TaxRegimeOption
	case ValueLiteral:
		return step.Literal
	}
	return ""
}

// AutomationResult is the outcome of a successful run.
type AutomationResult struct {
	DocumentURL string
	// Attempts is the number of runs the retry policy needed.
	Attempts int
}
