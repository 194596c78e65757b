package sentiment

import (
	"fmt"
	"sort"
)

// LabelCodec maps label names to dense class ids. Ids follow sorted label
// order, so the same label set always yields the same mapping.
type LabelCodec struct {
	Classes []Label
	index   map[Label]int
}

// NewLabelCodec returns an unfitted codec.
func NewLabelCodec() *LabelCodec {
	return &LabelCodec{}
}

// Fit assigns ids to the distinct labels. It may be called once.
func (c *LabelCodec) Fit(labels []string) error {
	if c.Classes != nil {
		return ErrAlreadyFitted
	}
	seen := make(map[Label]bool)
	for _, l := range labels {
		seen[Label(l)] = true
	}
	if len(seen) == 0 {
		return newError(KindTraining, "no labels to fit", nil)
	}

	classes := make([]Label, 0, len(seen))
	for l := range seen {
		classes = append(classes, l)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	c.Classes = classes
	c.buildIndex()
	return nil
}

func (c *LabelCodec) buildIndex() {
	c.index = make(map[Label]int, len(c.Classes))
	for id, l := range c.Classes {
		c.index[l] = id
	}
}

func (c *LabelCodec) lookup(l Label) (int, bool) {
	if c.index != nil {
		id, found := c.index[l]
		return id, found
	}
	for id, x := range c.Classes {
		if x == l {
			return id, true
		}
	}
	return 0, false
}

// Len returns the number of classes.
func (c *LabelCodec) Len() int {
	return len(c.Classes)
}

// Labels returns the classes in id order.
func (c *LabelCodec) Labels() []Label {
	return append([]Label(nil), c.Classes...)
}

// Encode returns the id of label.
func (c *LabelCodec) Encode(label string) (int, error) {
	if c.Classes == nil {
		return 0, ErrNotFitted
	}
	id, found := c.lookup(Label(label))
	if !found {
		return 0, newError(KindCodecMismatch, fmt.Sprintf("unknown label %q", label), nil)
	}
	return id, nil
}

// EncodeAll encodes every label, failing on the first unknown one.
func (c *LabelCodec) EncodeAll(labels []string) ([]int, error) {
	ids := make([]int, len(labels))
	for i, l := range labels {
		id, err := c.Encode(l)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// Decode returns the label for id. An id outside the fitted label space means
// artifacts from different training runs were mixed, so it fails loudly.
func (c *LabelCodec) Decode(id int) (Label, error) {
	if id < 0 || id >= len(c.Classes) {
		return "", newError(KindCodecMismatch,
			fmt.Sprintf("id %d outside [0, %d)", id, len(c.Classes)), ErrOutOfRange)
	}
	return c.Classes[id], nil
}
