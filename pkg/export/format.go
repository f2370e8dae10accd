// Package export writes clusters to files or S3 in one of several encodings.
//
// Every encoding consumes an iter.Seq2[*model.Cluster, error], so accumulated
// mappings and native-layout iterations are written by the same code and in
// iteration order.
package export

import (
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yumyai/uniref90/pkg/model"
)

type Format string

const (
	FormatGob    Format = "gob"
	FormatJSON   Format = "json"
	FormatJSONL  Format = "jsonl"
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// Shape selects one record per cluster or one record per member.
type Shape string

const (
	ShapeCluster  Shape = "cluster"
	ShapeSequence Shape = "sequence"
)

// streamWriter encodes clusters onto w. Writers register themselves in init().
type streamWriter func(w io.Writer, shape Shape, clusters iter.Seq2[*model.Cluster, error]) error

var streamWriters = map[Format]streamWriter{}

func registerWriter(f Format, fn streamWriter) { streamWriters[f] = fn }

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == FormatSQLite {
		return f, nil
	}
	if _, ok := streamWriters[f]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w %q (want one of %s)", model.ErrUnknownFormat, s, strings.Join(Formats(), ", "))
}

// FormatFromPath guesses the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "db" {
		ext = string(FormatSQLite)
	}
	return ParseFormat(ext)
}

func ParseShape(s string) (Shape, error) {
	switch sh := Shape(strings.ToLower(strings.TrimSpace(s))); sh {
	case ShapeCluster, ShapeSequence:
		return sh, nil
	default:
		return "", fmt.Errorf("%w: shape %q (want cluster or sequence)", model.ErrUnknownFormat, s)
	}
}

func Formats() []string {
	out := []string{string(FormatSQLite)}
	for f := range streamWriters {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}
