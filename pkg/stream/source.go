// Package stream delivers upstream rows one at a time. Sources are lazy,
// forward-only and single-pass; a fresh Source is needed to start over.
package stream

import (
	"context"
	"io"

	"github.com/yumyai/uniref90/pkg/model"
)

// Source yields rows until it returns io.EOF.
type Source interface {
	Next(ctx context.Context) (*model.Row, error)
	Close() error
}

// Opener creates a fresh Source, one per pass over the data.
type Opener func(ctx context.Context) (Source, error)

type limited struct {
	src  Source
	left int
}

// Limit stops src after n rows. n <= 0 leaves src unbounded.
func Limit(src Source, n int) Source {
	if n <= 0 {
		return src
	}
	return &limited{src: src, left: n}
}

func (l *limited) Next(ctx context.Context) (*model.Row, error) {
	if l.left <= 0 {
		return nil, io.EOF
	}
	row, err := l.src.Next(ctx)
	if err != nil {
		return nil, err
	}
	l.left--
	return row, nil
}

func (l *limited) Close() error {
	return l.src.Close()
}

// SliceSource serves rows held in memory.
type SliceSource struct {
	rows []*model.Row
	pos  int
}

func NewSliceSource(rows ...*model.Row) *SliceSource {
	return &SliceSource{rows: rows}
}

func (s *SliceSource) Next(ctx context.Context) (*model.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

func (s *SliceSource) Close() error {
	return nil
}

// SliceOpener opens a new SliceSource over the same rows on every call.
func SliceOpener(rows ...*model.Row) Opener {
	return func(context.Context) (Source, error) {
		return NewSliceSource(rows...), nil
	}
}
