package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/yumyai/uniref90/pkg/model"
)

func init() {
	registerWriter(FormatJSON, writeJSON)
}

// clusterBody is the value side of the cluster-shape JSON object.
type clusterBody struct {
	Accession   []string `json:"accession"`
	Sequence    []string `json:"sequence"`
	Description []string `json:"description"`
	Index       []int    `json:"index"`
}

// writeJSON writes a single document. The cluster shape is an object keyed by
// cluster ID whose keys follow iteration order; encoding/json would sort a
// map, so the object is assembled by hand. A repeated ID, possible when
// exporting upstream rows directly, fails with model.ErrDuplicateCluster. The
// sequence shape is an array.
func writeJSON(w io.Writer, shape Shape, clusters iter.Seq2[*model.Cluster, error]) error {
	bw := bufio.NewWriter(w)
	begin, end := "{", "}"
	if shape == ShapeSequence {
		begin, end = "[", "]"
	}
	if _, err := bw.WriteString(begin + "\n"); err != nil {
		return err
	}

	first := true
	seen := make(map[string]struct{})
	sep := func() error {
		if first {
			first = false
			return nil
		}
		_, err := bw.WriteString(",\n")
		return err
	}

	for c, err := range clusters {
		if err != nil {
			return err
		}

		if shape == ShapeSequence {
			for _, rec := range c.SequenceRecords() {
				if err := sep(); err != nil {
					return err
				}
				if err := writeValue(bw, rec); err != nil {
					return err
				}
			}
			continue
		}

		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: %s (use jsonl or the sequence shape)", model.ErrDuplicateCluster, c.ID)
		}
		seen[c.ID] = struct{}{}

		if err := sep(); err != nil {
			return err
		}
		if err := writeValue(bw, c.ID); err != nil {
			return err
		}
		if err := bw.WriteByte(':'); err != nil {
			return err
		}
		rec := c.Record()
		body := clusterBody{
			Accession:   rec.Accessions,
			Sequence:    rec.Sequences,
			Description: rec.Descriptions,
			Index:       rec.Indices,
		}
		if err := writeValue(bw, body); err != nil {
			return err
		}
	}

	if _, err := bw.WriteString("\n" + end + "\n"); err != nil {
		return err
	}
	return bw.Flush()
}

func writeValue(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
