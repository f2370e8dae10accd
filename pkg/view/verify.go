package view

import (
	"context"
	"errors"
	"io"

	"github.com/yumyai/uniref90/pkg/model"
)

// VerifyReport describes how well the first rows of a source fit the
// one-cluster-per-row layout.
type VerifyReport struct {
	Rows int `json:"rows"`

	// 1-based positions of rows whose parallel arrays differ in length.
	Ragged      []int    `json:"ragged_rows,omitempty"`
	RaggedError []string `json:"ragged_errors,omitempty"`

	// Rows the source could not deliver whole. They say nothing about the
	// layout and do not fail the check.
	Truncated      []int    `json:"truncated_rows,omitempty"`
	TruncatedError []string `json:"truncated_errors,omitempty"`

	Empty int              `json:"empty_rows"`
	Sizes model.Statistics `json:"sizes"`

	// Rows whose members all carry the same protein name.
	SingleProtein int `json:"single_protein_rows"`
	MixedProtein  int `json:"mixed_protein_rows"`
}

func (r VerifyReport) OK() bool {
	return len(r.Ragged) == 0
}

// Verify reads up to nRows rows, recording rows that break the parallel array
// invariant or arrive truncated and carrying on past them. Other source errors
// stop the check.
func (v *View) Verify(ctx context.Context, nRows int) (VerifyReport, error) {
	var report VerifyReport

	src, err := v.open(ctx)
	if err != nil {
		return report, err
	}
	defer src.Close()

	var sizes []int
	for nRows <= 0 || report.Rows < nRows {
		row, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		report.Rows++

		if errors.Is(err, model.ErrTruncatedRow) {
			report.Truncated = append(report.Truncated, report.Rows)
			report.TruncatedError = append(report.TruncatedError, err.Error())
			continue
		}
		if errors.Is(err, model.ErrRaggedRow) {
			report.Ragged = append(report.Ragged, report.Rows)
			report.RaggedError = append(report.RaggedError, err.Error())
			continue
		}
		if err != nil {
			report.Rows--
			return report, err
		}

		if row.Len() == 0 {
			report.Empty++
			continue
		}
		sizes = append(sizes, row.Len())

		if singleProtein(row) {
			report.SingleProtein++
		} else {
			report.MixedProtein++
		}
	}

	report.Sizes = model.Summarize(sizes)
	report.Sizes.Sampled = true
	return report, nil
}

func singleProtein(row *model.Row) bool {
	first := model.ParseDescription(row.Descriptions[0]).ProteinName()
	for _, d := range row.Descriptions[1:] {
		if model.ParseDescription(d).ProteinName() != first {
			return false
		}
	}
	return true
}
