package telemetry

import (
	"context"
	"maps"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys.
const (
	ProfilingLabelOperation  = "operation"
	ProfilingLabelMerchantID = "merchant_id"
	ProfilingLabelRegion     = "region"
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
)

// Profiling operations and regions used by the extraction pipeline.
const (
	ProfilingOperationExtract    = "extract"
	ProfilingOperationAutomation = "automation"
	ProfilingRegionPreprocess    = "preprocess"
	ProfilingRegionOCR           = "ocr"
)

// MaxLabelValueLength caps label values.
const MaxLabelValueLength = 128

// HighCardinalityLabels are dropped from profiling labels. Do not modify at
// runtime.
var HighCardinalityLabels = map[string]bool{
	"user_id":    true,
	"request_id": true,
	"folio":      true,
	"invoice_id": true,
	"session_id": true,
	"trace_id":   true,
	"span_id":    true,
}

// WithProfilingLabels runs fn with pprof labels attached, so Pyroscope can
// slice profiles by them. labels is copied; fn runs unlabeled when nothing
// survives sanitizing.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(maps.Clone(labels))
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// ProfilingScope accumulates labels before running a labeled function.
type ProfilingScope struct {
	labels map[string]string
}

// NewProfilingScope creates a scope seeded with labels.
func NewProfilingScope(labels map[string]string) *ProfilingScope {
	scope := &ProfilingScope{labels: make(map[string]string, len(labels))}
	maps.Copy(scope.labels, labels)
	return scope
}

// WithLabel adds a label.
func (s *ProfilingScope) WithLabel(key, value string) *ProfilingScope {
	s.labels[key] = value
	return s
}

// WithMerchant adds the merchant_id label.
func (s *ProfilingScope) WithMerchant(merchantID string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelMerchantID, merchantID)
}

// WithRegion adds the region label.
func (s *ProfilingScope) WithRegion(region string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelRegion, region)
}

// Labels returns a copy of the accumulated labels.
func (s *ProfilingScope) Labels() map[string]string {
	return maps.Clone(s.labels)
}

// Run executes fn with the accumulated labels.
func (s *ProfilingScope) Run(ctx context.Context, fn func(context.Context)) {
	WithProfilingLabels(ctx, s.labels, fn)
}

// OperationLabels labels a pipeline operation for one merchant.
func OperationLabels(operation, merchantID string) map[string]string {
	labels := map[string]string{ProfilingLabelOperation: operation}
	if merchantID != "" {
		labels[ProfilingLabelMerchantID] = merchantID
	}
	return labels
}

// RegionLabels labels a code region inside an operation.
func RegionLabels(region string, extra map[string]string) map[string]string {
	labels := make(map[string]string, len(extra)+1)
	maps.Copy(labels, extra)
	labels[ProfilingLabelRegion] = region
	return labels
}

// HTTPRequestLabels labels a request by its route pattern and method.
func HTTPRequestLabels(route, method string) map[string]string {
	labels := make(map[string]string, 2)
	if route != "" {
		labels[ProfilingLabelRoute] = route
	}
	if method != "" {
		labels[ProfilingLabelMethod] = method
	}
	return labels
}

// sanitizeLabels returns sorted key/value pairs, skipping empty and
// high-cardinality entries and truncating long values.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		k := sanitizeLabelKey(key)
		if k == "" || value == "" || HighCardinalityLabels[k] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		pairs = append(pairs, k, value)
	}
	return pairs
}

// sanitizeLabelKey lowercases key and keeps only [a-z0-9_].
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			out = append(out, c)
		}
	}
	return string(out)
}
