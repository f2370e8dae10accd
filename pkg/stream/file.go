package stream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"github.com/yumyai/uniref90/pkg/model"
)

// FileSource replays rows from newline-delimited JSON. Each line is either a
// bare row object or a rows-endpoint item wrapping it under "row".
type FileSource struct {
	path   string
	f      io.Closer
	r      *bufio.Reader
	lineNo int
}

func NewFileSource(r io.Reader) *FileSource {
	return &FileSource{path: "<reader>", r: bufio.NewReaderSize(r, 1<<20)}
}

func OpenFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrSourceUnavailable, err)
	}
	return &FileSource{path: path, f: f, r: bufio.NewReaderSize(f, 1<<20)}, nil
}

func FileOpener(path string) Opener {
	return func(context.Context) (Source, error) {
		return OpenFileSource(path)
	}
}

func (s *FileSource) Next(ctx context.Context) (*model.Row, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// ReadBytes, not Scanner: a single row can exceed any fixed token size.
		line, err := s.r.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if len(line) == 0 && errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		s.lineNo++

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return nil, fmt.Errorf("%s:%d: invalid JSON", s.path, s.lineNo)
		}

		obj := gjson.ParseBytes(line)
		if wrapped := obj.Get("row"); wrapped.IsObject() {
			obj = wrapped
		}

		row, rowErr := rowFromJSON(obj)
		if rowErr != nil {
			return nil, fmt.Errorf("%s:%d: %w", s.path, s.lineNo, rowErr)
		}
		return row, nil
	}
}

func (s *FileSource) Close() error {
	if s.f == nil {
		return nil
	}
	return s.f.Close()
}
