package cli

import (
	"encoding/json"
	"io"
	"iter"

	"github.com/yumyai/uniref90/pkg/model"
)

// writeRecords prints one cluster record per line so output can be piped to jq.
func writeRecords(w io.Writer, clusters iter.Seq2[*model.Cluster, error]) (int, error) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	n := 0
	for c, err := range clusters {
		if err != nil {
			return n, err
		}
		if err := enc.Encode(c.Record()); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
