// Package view reads the dataset's native layout, one cluster per row,
// without re-keying. Every operation pulls from a fresh source.
package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/yumyai/uniref90/logger"
	"github.com/yumyai/uniref90/pkg/model"
	"github.com/yumyai/uniref90/pkg/stream"
)

const (
	DefaultMaxSearch   = 10000
	DefaultStatSamples = 1000
)

var clustersStreamedCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "uniref90_view_clusters_total",
	Help: "Clusters read from the native one-cluster-per-row layout.",
})

type View struct {
	open stream.Opener
}

func New(open stream.Opener) *View {
	return &View{open: open}
}

// Iterate yields up to maxClusters clusters (maxClusters <= 0 means all) in
// upstream order. Each call opens a new source. Empty rows are skipped since
// they have no ID; a broken row is yielded as an error and ends iteration.
func (v *View) Iterate(ctx context.Context, maxClusters int) iter.Seq2[*model.Cluster, error] {
	return func(yield func(*model.Cluster, error) bool) {
		src, err := v.open(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		defer src.Close()

		count := 0
		rowNo := 0
		for maxClusters <= 0 || count < maxClusters {
			row, err := src.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			rowNo++

			c, err := model.ClusterFromRow(row)
			if errors.Is(err, model.ErrEmptyRow) {
				logger.Warn("Skipping empty row", zap.Int("row", rowNo))
				continue
			}
			if err != nil {
				yield(nil, fmt.Errorf("row %d: %w", rowNo, err))
				return
			}

			clustersStreamedCounter.Inc()
			count++
			if !yield(c, nil) {
				return
			}
		}
	}
}

// GetByID scans at most maxSearch clusters for id and returns the first match.
// Cost is linear in maxSearch; nothing is indexed.
func (v *View) GetByID(ctx context.Context, id string, maxSearch int) (*model.Cluster, error) {
	scanned := 0
	for c, err := range v.Iterate(ctx, maxSearch) {
		if err != nil {
			return nil, err
		}
		scanned++
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s (searched %d clusters)", model.ErrClusterNotFound, id, scanned)
}

// FilterBySize yields clusters whose size lies in r, stopping after
// maxResults matches (maxResults <= 0 means no cap). The scan itself is not capped.
func (v *View) FilterBySize(ctx context.Context, r model.SizeRange, maxResults int) iter.Seq2[*model.Cluster, error] {
	return func(yield func(*model.Cluster, error) bool) {
		matched := 0
		for c, err := range v.Iterate(ctx, 0) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !r.Contains(c.Size()) {
				continue
			}
			if !yield(c, nil) {
				return
			}
			matched++
			if maxResults > 0 && matched >= maxResults {
				return
			}
		}
	}
}

// Sample materialises the first n clusters.
func (v *View) Sample(ctx context.Context, n int) ([]*model.Cluster, error) {
	out := make([]*model.Cluster, 0, max(n, 0))
	for c, err := range v.Iterate(ctx, n) {
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Statistics summarises a fresh sample of nSamples clusters. It approximates
// the dataset and is marked Sampled.
func (v *View) Statistics(ctx context.Context, nSamples int) (model.Statistics, error) {
	sample, err := v.Sample(ctx, nSamples)
	if err != nil {
		return model.Statistics{}, err
	}

	sizes := make([]int, len(sample))
	for i, c := range sample {
		sizes[i] = c.Size()
	}

	st := model.Summarize(sizes)
	st.Sampled = true
	return st, nil
}
