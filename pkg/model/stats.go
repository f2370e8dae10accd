package model

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Size bins reported in Statistics.Bins, in display order.
var SizeBins = []struct {
	Label string
	Range SizeRange
}{
	{"1", SizeRange{Min: 1, Max: 1}},
	{"2-10", SizeRange{Min: 2, Max: 10}},
	{"11-100", SizeRange{Min: 11, Max: 100}},
	{">100", SizeRange{Min: 101, Max: Unbounded}},
}

// Clusters of at least this size count as large.
const LargeClusterSize = 100

// Statistics summarises cluster sizes. When there is nothing to summarise
// NoData is set and the numeric fields are zero.
type Statistics struct {
	NoData  bool   `json:"no_data,omitempty"`
	Error   string `json:"error,omitempty"`
	Sampled bool   `json:"sampled,omitempty"`

	Clusters     int            `json:"total_clusters"`
	Members      int            `json:"total_sequences"`
	Min          int            `json:"min_cluster_size"`
	Max          int            `json:"max_cluster_size"`
	Mean         float64        `json:"mean_cluster_size"`
	Median       int            `json:"median_cluster_size"`
	SingleMember int            `json:"single_sequence_clusters"`
	MultiMember  int            `json:"multi_sequence_clusters"`
	Large        int            `json:"large_clusters_100plus"`
	Bins         map[string]int `json:"size_bins,omitempty"`
}

// Summarize computes Statistics over cluster sizes. The median is the upper
// median, sorted[n/2].
func Summarize(sizes []int) Statistics {
	if len(sizes) == 0 {
		return Statistics{NoData: true, Error: ErrEmptyDataset.Error()}
	}

	sorted := make([]int, len(sizes))
	copy(sorted, sizes)
	sort.Ints(sorted)

	asFloat := make([]float64, len(sorted))
	total := 0
	for i, s := range sorted {
		asFloat[i] = float64(s)
		total += s
	}

	st := Statistics{
		Clusters: len(sorted),
		Members:  total,
		Min:      sorted[0],
		Max:      sorted[len(sorted)-1],
		Mean:     stat.Mean(asFloat, nil),
		Median:   sorted[len(sorted)/2],
		Bins:     make(map[string]int, len(SizeBins)),
	}

	for _, b := range SizeBins {
		st.Bins[b.Label] = 0
	}

	for _, s := range sorted {
		switch {
		case s == 1:
			st.SingleMember++
		case s > 1:
			st.MultiMember++
		}
		if s >= LargeClusterSize {
			st.Large++
		}
		for _, b := range SizeBins {
			if b.Range.Contains(s) {
				st.Bins[b.Label]++
				break
			}
		}
	}

	return st
}
