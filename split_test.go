package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeatLabel(label, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = label
	}
	return out
}

func TestStratifiedSplit(t *testing.T) {
	labels := append(repeatLabel(0, 10), repeatLabel(1, 5)...)

	train, test, err := stratifiedSplit(labels, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, test, 3)
	assert.Len(t, train, 12)
	assert.IsIncreasing(t, train)
	assert.IsIncreasing(t, test)

	counts := map[int]int{}
	for _, idx := range test {
		counts[labels[idx]]++
	}
	assert.Equal(t, map[int]int{0: 2, 1: 1}, counts)

	seen := map[int]bool{}
	for _, idx := range append(append([]int(nil), train...), test...) {
		assert.False(t, seen[idx], "index %d used twice", idx)
		seen[idx] = true
	}
	assert.Len(t, seen, len(labels))

	train2, test2, err := stratifiedSplit(labels, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)
}

func TestStratifiedSplitErrors(t *testing.T) {
	tests := []struct {
		desc     string
		labels   []int
		fraction float64
	}{
		{"Single class", repeatLabel(0, 10), 0.2},
		{"Singleton class", append(repeatLabel(0, 10), 1), 0.2},
		{"Zero fraction", append(repeatLabel(0, 4), repeatLabel(1, 4)...), 0},
		{"Whole corpus", append(repeatLabel(0, 4), repeatLabel(1, 4)...), 1},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, _, err := stratifiedSplit(tt.labels, tt.fraction, 1)
			assert.True(t, IsKind(err, KindTraining), "got %v", err)
		})
	}
}

func TestStratifiedFolds(t *testing.T) {
	labels := []int{0, 1, 0, 0, 1, 0, 0, 1, 0}
	folds, err := stratifiedFolds(labels, 3)
	require.NoError(t, err)
	require.Len(t, folds, 3)

	total := 0
	for _, fold := range folds {
		counts := map[int]int{}
		for _, idx := range fold {
			counts[labels[idx]]++
		}
		assert.Equal(t, map[int]int{0: 2, 1: 1}, counts)
		total += len(fold)
	}
	assert.Equal(t, len(labels), total)

	_, err = stratifiedFolds([]int{0, 0, 0, 1, 1}, 3)
	assert.True(t, IsKind(err, KindTraining))
	_, err = stratifiedFolds(labels, 1)
	assert.True(t, IsKind(err, KindTraining))
}

func TestComplement(t *testing.T) {
	assert.Equal(t, []int{0, 2, 4}, complement(5, []int{1, 3}))
	assert.Equal(t, []int{}, complement(2, []int{0, 1}))
	assert.Equal(t, []int{0, 1}, complement(2, nil))
}
