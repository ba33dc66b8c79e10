package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatches(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		size  int
		want  [][]int
	}{
		{name: "empty", items: nil, size: 3, want: [][]int{}},
		{name: "exact", items: []int{1, 2, 3, 4}, size: 2, want: [][]int{{1, 2}, {3, 4}}},
		{name: "remainder", items: []int{1, 2, 3, 4, 5}, size: 2, want: [][]int{{1, 2}, {3, 4}, {5}}},
		{name: "size larger than input", items: []int{1, 2}, size: 10, want: [][]int{{1, 2}}},
		{name: "non-positive size", items: []int{1, 2}, size: 0, want: [][]int{{1}, {2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Batches(tt.items, tt.size))
		})
	}
}

func TestBatchesAppendDoesNotClobberNeighbour(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	batches := Batches(items, 2)

	_ = append(batches[0], "x")

	assert.Equal(t, []string{"a", "b", "c", "d"}, items)
}
