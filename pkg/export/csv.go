package export

import (
	"encoding/csv"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/yumyai/uniref90/pkg/model"
)

// ListSeparator joins array fields in the cluster-shape CSV.
const ListSeparator = "|"

var (
	sequenceColumns = []string{"cluster_id", "cluster_size", "accession", "sequence", "description", "index"}
	clusterColumns  = []string{"cluster_id", "cluster_size", "accessions", "sequences", "descriptions", "indices"}
)

func init() {
	registerWriter(FormatCSV, writeCSV)
}

func writeCSV(w io.Writer, shape Shape, clusters iter.Seq2[*model.Cluster, error]) error {
	cw := csv.NewWriter(w)

	header := clusterColumns
	if shape == ShapeSequence {
		header = sequenceColumns
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for c, err := range clusters {
		if err != nil {
			return err
		}
		if shape == ShapeSequence {
			for _, rec := range c.SequenceRecords() {
				if err := cw.Write(sequenceRow(rec)); err != nil {
					return err
				}
			}
			continue
		}
		if err := cw.Write(clusterRow(c.Record())); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func sequenceRow(rec model.SequenceRecord) []string {
	return []string{
		rec.ClusterID,
		strconv.Itoa(rec.ClusterSize),
		rec.Accession,
		rec.Sequence,
		rec.Description,
		strconv.Itoa(rec.Index),
	}
}

func clusterRow(rec model.ClusterRecord) []string {
	indices := make([]string, len(rec.Indices))
	for i, n := range rec.Indices {
		indices[i] = strconv.Itoa(n)
	}
	return []string{
		rec.ClusterID,
		strconv.Itoa(rec.ClusterSize),
		strings.Join(rec.Accessions, ListSeparator),
		strings.Join(rec.Sequences, ListSeparator),
		strings.Join(rec.Descriptions, ListSeparator),
		strings.Join(indices, ListSeparator),
	}
}
