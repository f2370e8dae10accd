package export

import (
	"encoding/gob"
	"io"
	"iter"

	"github.com/yumyai/uniref90/pkg/model"
)

func init() {
	registerWriter(FormatGob, writeGob)
}

// writeGob streams records as consecutive gob values. It is a snapshot format
// for reloading on the same system, not an interchange format.
func writeGob(w io.Writer, shape Shape, clusters iter.Seq2[*model.Cluster, error]) error {
	enc := gob.NewEncoder(w)
	for c, err := range clusters {
		if err != nil {
			return err
		}
		if shape == ShapeSequence {
			for _, rec := range c.SequenceRecords() {
				if err := enc.Encode(rec); err != nil {
					return err
				}
			}
			continue
		}
		if err := enc.Encode(c.Record()); err != nil {
			return err
		}
	}
	return nil
}
