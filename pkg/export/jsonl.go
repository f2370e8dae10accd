package export

import (
	"encoding/json"
	"io"
	"iter"

	"github.com/yumyai/uniref90/pkg/model"
)

func init() {
	registerWriter(FormatJSONL, writeJSONL)
}

// writeJSONL emits one ClusterRecord, or one SequenceRecord per member, per line.
func writeJSONL(w io.Writer, shape Shape, clusters iter.Seq2[*model.Cluster, error]) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

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
