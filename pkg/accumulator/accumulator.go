// Package accumulator regroups flattened upstream members by accession.
//
// Every member of every row is appended to the cluster keyed by its own
// accession, never by the row it arrived in. The mapping only grows during a
// run and lives entirely in memory, which is fine for sample-sized runs
// (hundreds to low thousands of rows) and nothing larger.
package accumulator

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

// Progress is logged every ProgressEvery rows.
const ProgressEvery = 100

var (
	rowsIngestedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uniref90_accumulator_rows_total",
		Help: "Rows ingested by cluster accumulators.",
	})

	membersIngestedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uniref90_accumulator_members_total",
		Help: "Members appended to accumulated clusters.",
	})
)

type Accumulator struct {
	clusters *model.ClusterSet
}

// IngestReport summarises one IngestStream call.
type IngestReport struct {
	Rows     int `json:"rows"`
	Members  int `json:"members"`
	Clusters int `json:"clusters"`
}

func New() *Accumulator {
	return &Accumulator{clusters: model.NewClusterSet()}
}

// Ingest appends each member of row to the cluster keyed by its accession.
// Duplicate accessions within one row are all appended. Empty rows add nothing.
func (a *Accumulator) Ingest(row *model.Row) error {
	if err := row.Validate(); err != nil {
		return err
	}

	for i := 0; i < row.Len(); i++ {
		m := row.Member(i)
		a.clusters.GetOrCreate(m.Accession).Add(m)
	}

	rowsIngestedCounter.Inc()
	membersIngestedCounter.Add(float64(row.Len()))
	return nil
}

// IngestStream drives Ingest until maxRows rows are consumed (maxRows <= 0
// means until exhaustion). The first failing row stops the run; rows already
// ingested stay in the mapping.
func (a *Accumulator) IngestStream(ctx context.Context, src stream.Source, maxRows int) (IngestReport, error) {
	var report IngestReport

	for maxRows <= 0 || report.Rows < maxRows {
		row, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.Clusters = a.clusters.Len()
			return report, fmt.Errorf("after %d rows: %w", report.Rows, err)
		}

		if err := a.Ingest(row); err != nil {
			report.Clusters = a.clusters.Len()
			return report, fmt.Errorf("row %d: %w", report.Rows, err)
		}

		report.Rows++
		report.Members += row.Len()

		if report.Rows%ProgressEvery == 0 {
			logger.Info("Accumulating",
				zap.Int("rows", report.Rows),
				zap.Int("members", report.Members),
				zap.Int("clusters", a.clusters.Len()))
		}
	}

	report.Clusters = a.clusters.Len()
	logger.Info("Finished accumulating",
		zap.Int("rows", report.Rows),
		zap.Int("members", report.Members),
		zap.Int("clusters", report.Clusters))

	return report, nil
}

// Load appends previously exported clusters, merging into existing IDs. A
// cluster without members stops the load with model.ErrEmptyRow.
func (a *Accumulator) Load(clusters iter.Seq2[*model.Cluster, error]) (int, error) {
	n := 0
	for c, err := range clusters {
		if err != nil {
			return n, err
		}
		if c.Size() == 0 {
			return n, fmt.Errorf("cluster %s: %w", c.ID, model.ErrEmptyRow)
		}
		target := a.clusters.GetOrCreate(c.ID)
		for _, m := range c.Members {
			target.Add(m)
		}
		n++
	}
	return n, nil
}

func (a *Accumulator) Get(id string) (*model.Cluster, bool) {
	return a.clusters.Get(id)
}

func (a *Accumulator) Len() int {
	return a.clusters.Len()
}

func (a *Accumulator) Members() int {
	return a.clusters.Members()
}

// Clusters yields the mapping in insertion order.
func (a *Accumulator) Clusters() iter.Seq2[*model.Cluster, error] {
	return a.clusters.Stream()
}

// Statistics covers the whole mapping at call time. An empty mapping gives NoData.
func (a *Accumulator) Statistics() model.Statistics {
	return model.Summarize(a.clusters.Sizes())
}

// FilterBySize returns the clusters whose size lies in r without touching the mapping.
func (a *Accumulator) FilterBySize(r model.SizeRange) *model.ClusterSet {
	return a.clusters.FilterBySize(r)
}
