package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeEmpty(t *testing.T) {
	st := Summarize(nil)
	assert.True(t, st.NoData)
	assert.Equal(t, ErrEmptyDataset.Error(), st.Error)
	assert.Zero(t, st.Clusters)
}

func TestSummarize(t *testing.T) {
	st := Summarize([]int{1, 15, 3, 1, 2, 150})

	assert.False(t, st.NoData)
	assert.Equal(t, 6, st.Clusters)
	assert.Equal(t, 172, st.Members)
	assert.Equal(t, 1, st.Min)
	assert.Equal(t, 150, st.Max)
	assert.InDelta(t, 172.0/6.0, st.Mean, 1e-9)
	// sorted: 1 1 2 3 15 150, upper median
	assert.Equal(t, 3, st.Median)
	assert.Equal(t, 2, st.SingleMember)
	assert.Equal(t, 4, st.MultiMember)
	assert.Equal(t, 1, st.Large)
	assert.Equal(t, map[string]int{"1": 2, "2-10": 2, "11-100": 1, ">100": 1}, st.Bins)
}

func TestSizeRangeContains(t *testing.T) {
	tests := []struct {
		name string
		r    SizeRange
		size int
		want bool
	}{
		{"below", SizeRange{Min: 2, Max: 10}, 1, false},
		{"lower edge", SizeRange{Min: 2, Max: 10}, 2, true},
		{"upper edge", SizeRange{Min: 2, Max: 10}, 10, true},
		{"above", SizeRange{Min: 2, Max: 10}, 11, false},
		{"unbounded", SizeRange{Min: 2}, 100000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Contains(tt.size))
		})
	}
}
