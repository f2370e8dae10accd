package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Remote dataset could not be reached or resolved. Not retried.
	ErrSourceUnavailable = errors.New("dataset source unavailable")
	ErrUnknownFormat     = errors.New("unknown format")
	ErrEmptyDataset      = errors.New("no clusters loaded")
	ErrClusterNotFound   = errors.New("cluster not found")
	ErrRaggedRow         = errors.New("row arrays differ in length")
	ErrEmptyRow          = errors.New("row has no members")
	ErrDuplicateCluster  = errors.New("duplicate cluster id")
	// The rows endpoint cut oversized cells short; the row cannot be rebuilt.
	ErrTruncatedRow = errors.New("row cells truncated by source")
)

// RaggedRowError reports a row whose parallel arrays do not line up.
type RaggedRowError struct {
	Accessions   int
	Sequences    int
	Descriptions int
	Indices      int
}

func (e *RaggedRowError) Error() string {
	return fmt.Sprintf("%s: accession=%d, sequence=%d, description=%d, index=%d",
		ErrRaggedRow, e.Accessions, e.Sequences, e.Descriptions, e.Indices)
}

func (e *RaggedRowError) Is(target error) bool {
	return target == ErrRaggedRow
}

// TruncatedRowError names the cells a source cut short.
type TruncatedRowError struct {
	Cells []string
}

func (e *TruncatedRowError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTruncatedRow, strings.Join(e.Cells, ", "))
}

func (e *TruncatedRowError) Is(target error) bool {
	return target == ErrTruncatedRow
}
