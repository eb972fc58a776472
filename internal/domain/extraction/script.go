package extraction

import (
	"fmt"
	"net/url"
	"time"
)

// Action is the operation a Step performs on its target element.
type Action string

// Step actions.
const (
	ActionFill   Action = "fill"
	ActionClick  Action = "click"
	ActionSelect Action = "select"
	// ActionExtractLink reads the href of the target and ends the script.
	ActionExtractLink Action = "extract_link"
)

// ValueSource names where a fill/select value comes from.
type ValueSource string

// Value sources.
const (
	ValueNone      ValueSource = ""
	ValueTaxID     ValueSource = "tax_id"
	ValueFolio     ValueSource = "folio"
	ValueCFDIUsage ValueSource = "cfdi_usage"
	ValueTaxRegime ValueSource = "tax_regime"
	ValueLiteral   ValueSource = "literal"
)

// Step is one declarative instruction of an AutomationScript.
type Step struct {
	State    State
	Action   Action
	Selector string
	Value    ValueSource
	Literal  string
}

// AutomationScript is the declarative program that drives a merchant's
// invoicing portal.
type AutomationScript struct {
	StartURL    string
	BaseURL     string
	StepTimeout time.Duration
	Steps       []Step
}

// Validate checks the script is well formed: steps run in non-decreasing
// state order, value-consuming actions name a source, and the script ends
// with exactly one link extraction.
func (s *AutomationScript) Validate() error {
	if s == nil {
		return NewError(KindInvalidInput, "script is nil")
	}
	if _, err := url.ParseRequestURI(s.StartURL); err != nil {
		return WrapError(KindInvalidInput, "invalid start url", err)
	}
	if s.BaseURL != "" {
		if _, err := url.ParseRequestURI(s.BaseURL); err != nil {
			return WrapError(KindElementNotFound, "invalid base url", err)
		}
	}
	if len(s.Steps) == 0 {
		return NewError(KindInvalidInput, "script has no steps")
	}

	prev := StatePageLoaded
	for i, step := range s.Steps {
		if !step.State.IsStepState() {
			return NewError(KindInvalidInput, fmt.Sprintf("step %d: state %s cannot hold steps", i, step.State))
		}
		if step.State < prev {
			return NewError(KindInvalidInput, fmt.Sprintf("step %d: state %s runs after %s", i, step.State, prev))
		}
		prev = step.State
		if step.Selector == "" {
			return NewError(KindInvalidInput, fmt.Sprintf("step %d: selector is required", i))
		}
		switch step.Action {
		case ActionFill, ActionSelect:
			if step.Value == ValueNone {
				return NewError(KindInvalidInput, fmt.Sprintf("step %d: %s needs a value source", i, step.Action))
			}
			if step.Value == ValueLiteral && step.Literal == "" {
				return NewError(KindInvalidInput, fmt.Sprintf("step %d: literal value is empty", i))
			}
		case ActionClick:
		case ActionExtractLink:
			if i != len(s.Steps)-1 {
				return NewError(KindInvalidInput, fmt.Sprintf("step %d: link extraction must be the last step", i))
			}
			if step.State != StateDocumentLinkExtracted {
				return NewError(KindInvalidInput, fmt.Sprintf("step %d: link extraction must run in %s", i, StateDocumentLinkExtracted))
			}
		default:
			return NewError(KindInvalidInput, fmt.Sprintf("step %d: unknown action %q", i, step.Action))
		}
	}
	if s.Steps[len(s.Steps)-1].Action != ActionExtractLink {
		return NewError(KindInvalidInput, "script must end with a link extraction")
	}
	return nil
}

// ResolveDocumentURL composes href with the script's base URL. Absolute
// hrefs are returned unchanged.
func (s *AutomationScript) ResolveDocumentURL(href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", WrapError(KindElementNotFound, "document link is not a valid url", err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	base := s.BaseURL
	if base == "" {
		base = s.StartURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", WrapError(KindElementNotFound, "invalid base url", err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}
