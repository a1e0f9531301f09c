package ml

import (
	"fmt"
	"sort"
)

// LabelCodec maps category strings to the integer class labels the ensemble
// trains on, and back. Classes are sorted so encoding is stable across runs.
type LabelCodec struct {
	Classes []string
}

// NewLabelCodec builds a codec over the distinct labels present.
func NewLabelCodec(labels []string) *LabelCodec {
	seen := make(map[string]struct{})
	var classes []string
	for _, l := range labels {
		if _, ok := seen[l]; !ok {
			seen[l] = struct{}{}
			classes = append(classes, l)
		}
	}
	sort.Strings(classes)
	return &LabelCodec{Classes: classes}
}

// Encode converts labels to class indices.
func (c *LabelCodec) Encode(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		idx := c.Index(l)
		if idx < 0 {
			return nil, fmt.Errorf("unknown label %q", l)
		}
		out[i] = idx
	}
	return out, nil
}

// Decode converts a class index back to its label.
func (c *LabelCodec) Decode(class int) (string, error) {
	if class < 0 || class >= len(c.Classes) {
		return "", fmt.Errorf("class index %d out of range", class)
	}
	return c.Classes[class], nil
}

// Index returns the class index for a label, or -1 when unknown.
func (c *LabelCodec) Index(label string) int {
	pos := sort.SearchStrings(c.Classes, label)
	if pos < len(c.Classes) && c.Classes[pos] == label {
		return pos
	}
	return -1
}

// NumClasses returns the number of encoded classes.
func (c *LabelCodec) NumClasses() int {
	return len(c.Classes)
}
