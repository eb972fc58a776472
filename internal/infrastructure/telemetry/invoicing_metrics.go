package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// InvoicingMetrics records folio extraction and invoice automation
// outcomes. A nil *InvoicingMetrics is valid and records nothing.
type InvoicingMetrics struct {
	extractions       *Counter
	extractionLatency *Histogram
	automations       *Counter
	automationLatency *Histogram
	stateFailures     *Counter
}

// NewInvoicingMetrics registers the invoicing instruments on meter.
func NewInvoicingMetrics(meter metric.Meter) (*InvoicingMetrics, error) {
	extractions, err := NewCounter(meter, "facturasnap.extractions", "Folio extraction attempts by outcome", "{extraction}")
	if err != nil {
		return nil, err
	}
	extractionLatency, err := NewHistogram(meter, HistogramOpts{
		Name:        "facturasnap.extraction.duration",
		Description: "Folio extraction duration",
		Unit:        "s",
		Boundaries:  AutomationDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	automations, err := NewCounter(meter, "facturasnap.automations", "Invoice automation runs by outcome", "{run}")
	if err != nil {
		return nil, err
	}
	automationLatency, err := NewHistogram(meter, HistogramOpts{
		Name:        "facturasnap.automation.duration",
		Description: "Invoice automation duration",
		Unit:        "s",
		Boundaries:  AutomationDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	stateFailures, err := NewCounter(meter, "facturasnap.automation.state_failures", "Automation aborts by state", "{abort}")
	if err != nil {
		return nil, err
	}
	return &InvoicingMetrics{
		extractions:       extractions,
		extractionLatency: extractionLatency,
		automations:       automations,
		automationLatency: automationLatency,
		stateFailures:     stateFailures,
	}, nil
}

// RecordExtraction records one extraction. outcome is "ok" or a failure kind.
func (m *InvoicingMetrics) RecordExtraction(ctx context.Context, merchantID, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.extractions.Inc(ctx, AttrMerchantID.String(merchantID), AttrOutcome.String(outcome))
	m.extractionLatency.RecordDuration(ctx, d, AttrMerchantID.String(merchantID))
}

// RecordAutomation records one automation run.
func (m *InvoicingMetrics) RecordAutomation(ctx context.Context, merchantID, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.automations.Inc(ctx, AttrMerchantID.String(merchantID), AttrOutcome.String(outcome))
	m.automationLatency.RecordDuration(ctx, d, AttrMerchantID.String(merchantID))
}

// RecordStateFailure records the state at which a run aborted.
func (m *InvoicingMetrics) RecordStateFailure(ctx context.Context, merchantID, state string) {
	if m == nil {
		return
	}
	m.stateFailures.Inc(ctx, AttrMerchantID.String(merchantID), AttrState.String(state))
}
