package tags

import (
	"strings"
)

// Filter drops blocked labels before they are stored.
type Filter struct {
	blocked map[string]struct{}
}

// FilterConfig holds filter configuration.
type FilterConfig struct {
	BlockedLabels []string
}

// NewFilter creates a new filter.
func NewFilter(cfg FilterConfig) *Filter {
	blocked := make(map[string]struct{}, len(cfg.BlockedLabels))
	for _, l := range cfg.BlockedLabels {
		if n := Normalize(l); n != "" {
			blocked[n] = struct{}{}
		}
	}

	return &Filter{blocked: blocked}
}

// FilterResult contains the filter decision.
type FilterResult struct {
	Pass   bool
	Reason string
}

// Check examines a single normalized label.
func (f *Filter) Check(label string) FilterResult {
	if label == "" {
		return FilterResult{
			Pass:   false,
			Reason: "empty label",
		}
	}

	if _, ok := f.blocked[strings.ToLower(label)]; ok {
		return FilterResult{
			Pass:   false,
			Reason: "blocked label: " + label,
		}
	}

	return FilterResult{Pass: true}
}

// FilterLabels returns only the labels that pass.
func (f *Filter) FilterLabels(labels []string) []string {
	result := make([]string, 0, len(labels))

	for _, label := range labels {
		if check := f.Check(label); check.Pass {
			result = append(result, label)
		}
	}

	return result
}

// Blocked returns the number of blocked labels.
func (f *Filter) Blocked() int {
	return len(f.blocked)
}
