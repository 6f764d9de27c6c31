// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the conversion stages: rendering or
// extraction, size capping, the model call, and reassembly of the final
// Markdown. One work item's failure becomes a placeholder fragment; the
// run itself only aborts on setup errors or context cancellation.
package pipeline

// ItemResult records the outcome of one work item: a page in full-page
// mode, an embedded image (1-based, in document order) in describe mode.
type ItemResult struct {
	Item  int    `yaml:"item"`
	OK    bool   `yaml:"ok"`
	Error string `yaml:"error,omitempty"`
}

// Summary holds counts from one pipeline run.
type Summary struct {
	Succeeded int          `yaml:"succeeded"`
	Failed    int          `yaml:"failed"`
	Items     []ItemResult `yaml:"items,omitempty"`
}

// Total returns the number of work items processed.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed
}

// HasFailures reports whether any item was replaced by a placeholder.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

func (s *Summary) recordSuccess(item int) {
	s.Succeeded++
	s.Items = append(s.Items, ItemResult{Item: item, OK: true})
}

func (s *Summary) recordFailure(item int, err error) {
	s.Failed++
	s.Items = append(s.Items, ItemResult{Item: item, Error: err.Error()})
}
