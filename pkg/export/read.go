package export

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/tidwall/gjson"

	"github.com/yumyai/uniref90/pkg/model"
)

// ReadJSONL reads back a JSONL export. Cluster-shape lines map to one cluster
// each; consecutive sequence-shape lines with the same cluster_id are merged.
func ReadJSONL(r io.Reader) iter.Seq2[*model.Cluster, error] {
	return func(yield func(*model.Cluster, error) bool) {
		br := bufio.NewReaderSize(r, 1<<20)
		var pending *model.Cluster
		lineNo := 0

		for {
			line, err := br.ReadBytes('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				yield(nil, err)
				return
			}
			if len(line) == 0 && errors.Is(err, io.EOF) {
				break
			}
			lineNo++

			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}

			if gjson.GetBytes(line, "accessions").Exists() {
				if pending != nil {
					if !yield(pending, nil) {
						return
					}
					pending = nil
				}
				var rec model.ClusterRecord
				if err := json.Unmarshal(line, &rec); err != nil {
					yield(nil, fmt.Errorf("line %d: %w", lineNo, err))
					return
				}
				c, err := rec.Cluster()
				if err != nil {
					yield(nil, fmt.Errorf("line %d: %w", lineNo, err))
					return
				}
				if !yield(c, nil) {
					return
				}
				continue
			}

			var rec model.SequenceRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				yield(nil, fmt.Errorf("line %d: %w", lineNo, err))
				return
			}
			if pending != nil && pending.ID != rec.ClusterID {
				if !yield(pending, nil) {
					return
				}
				pending = nil
			}
			if pending == nil {
				pending = &model.Cluster{ID: rec.ClusterID}
			}
			pending.Add(model.Member{
				Accession:   rec.Accession,
				Sequence:    rec.Sequence,
				Description: rec.Description,
				Index:       rec.Index,
			})
		}

		if pending != nil {
			yield(pending, nil)
		}
	}
}

// ReadJSON reads a cluster-shape JSON document, keeping key order.
func ReadJSON(r io.Reader) iter.Seq2[*model.Cluster, error] {
	return func(yield func(*model.Cluster, error) bool) {
		data, err := io.ReadAll(r)
		if err != nil {
			yield(nil, err)
			return
		}
		if !gjson.ValidBytes(data) {
			yield(nil, errors.New("invalid JSON document"))
			return
		}
		doc := gjson.ParseBytes(data)
		if !doc.IsObject() {
			yield(nil, fmt.Errorf("JSON export is %s, want cluster-shape object", doc.Type))
			return
		}

		doc.ForEach(func(key, value gjson.Result) bool {
			rec := model.ClusterRecord{
				ClusterID:    key.String(),
				Accessions:   stringsOf(value.Get("accession")),
				Sequences:    stringsOf(value.Get("sequence")),
				Descriptions: stringsOf(value.Get("description")),
			}
			for _, v := range value.Get("index").Array() {
				rec.Indices = append(rec.Indices, int(v.Int()))
			}
			c, err := rec.Cluster()
			if err != nil {
				yield(nil, fmt.Errorf("cluster %s: %w", rec.ClusterID, err))
				return false
			}
			return yield(c, nil)
		})
	}
}

func stringsOf(r gjson.Result) []string {
	items := r.Array()
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.String()
	}
	return out
}

// gobRecord decodes either record layout. Gob matches fields by name, so a
// stream of ClusterRecord or SequenceRecord values both land here.
type gobRecord struct {
	ClusterID    string
	ClusterSize  int
	Accessions   []string
	Sequences    []string
	Descriptions []string
	Indices      []int
	Accession    string
	Sequence     string
	Description  string
	Index        int
}

// Cluster-shape records always carry arrays; sequence-shape records always
// carry a positive cluster_size. Gob omits zero values, so a record with
// neither is an empty cluster.
func (r *gobRecord) isCluster() bool {
	return len(r.Accessions) > 0 || len(r.Sequences) > 0 ||
		len(r.Descriptions) > 0 || len(r.Indices) > 0 || r.ClusterSize == 0
}

// ReadGob reads a gob export of either shape. Consecutive sequence records
// with the same cluster_id are merged into one cluster.
func ReadGob(r io.Reader) iter.Seq2[*model.Cluster, error] {
	return func(yield func(*model.Cluster, error) bool) {
		dec := gob.NewDecoder(r)
		var pending *model.Cluster

		for {
			var rec gobRecord
			err := dec.Decode(&rec)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				yield(nil, err)
				return
			}

			if rec.isCluster() {
				if pending != nil {
					if !yield(pending, nil) {
						return
					}
					pending = nil
				}
				c, err := model.ClusterRecord{
					ClusterID:    rec.ClusterID,
					ClusterSize:  rec.ClusterSize,
					Accessions:   rec.Accessions,
					Sequences:    rec.Sequences,
					Descriptions: rec.Descriptions,
					Indices:      rec.Indices,
				}.Cluster()
				if err != nil {
					yield(nil, fmt.Errorf("cluster %s: %w", rec.ClusterID, err))
					return
				}
				if !yield(c, nil) {
					return
				}
				continue
			}

			if pending != nil && pending.ID != rec.ClusterID {
				if !yield(pending, nil) {
					return
				}
				pending = nil
			}
			if pending == nil {
				pending = &model.Cluster{ID: rec.ClusterID}
			}
			pending.Add(model.Member{
				Accession:   rec.Accession,
				Sequence:    rec.Sequence,
				Description: rec.Description,
				Index:       rec.Index,
			})
		}

		if pending != nil {
			yield(pending, nil)
		}
	}
}

// ReadFile picks a reader from the file extension. The file is closed when
// iteration ends.
func ReadFile(path string) (iter.Seq2[*model.Cluster, error], error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	var read func(io.Reader) iter.Seq2[*model.Cluster, error]
	switch format {
	case FormatJSONL:
		read = ReadJSONL
	case FormatJSON:
		read = ReadJSON
	case FormatGob:
		read = ReadGob
	default:
		return nil, fmt.Errorf("%w: cannot read %s exports back", model.ErrUnknownFormat, format)
	}

	return func(yield func(*model.Cluster, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(nil, err)
			return
		}
		defer f.Close()

		for c, err := range read(f) {
			if !yield(c, err) {
				return
			}
		}
	}, nil
}
