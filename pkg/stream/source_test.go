package stream

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/uniref90/pkg/model"
)

const rowsJSONL = `{"accession":["UniRef90_A","UniRef90_B"],"sequence":["MKV","MKL"],"description":["a n=2","b n=2"],"index":[0,1]}

{"row_idx":1,"row":{"accession":"UniRef90_C","sequence":"MAA","description":"c","index":5},"truncated_cells":[]}
{"accession":["UniRef90_D"],"sequence":["MDD"],"description":["d"],"index":[0]}`

func TestFileSource(t *testing.T) {
	src := NewFileSource(strings.NewReader(rowsJSONL))
	got := drain(t, src)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"UniRef90_A", "UniRef90_B"}, got[0].Accessions)
	// scalar fields become single-member rows
	assert.Equal(t, []string{"UniRef90_C"}, got[1].Accessions)
	assert.Equal(t, []int{5}, got[1].Indices)
	assert.Equal(t, "MDD", got[2].Sequences[0])
}

func TestFileSourceReportsLine(t *testing.T) {
	bad := `{"accession":["A"],"sequence":["M"],"description":["a"],"index":[0]}
{"accession":["B","C"],"sequence":["M"],"description":["b","c"],"index":[0,1]}`

	src := NewFileSource(strings.NewReader(bad))
	_, err := src.Next(context.Background())
	require.NoError(t, err)

	_, err = src.Next(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRaggedRow)
	assert.Contains(t, err.Error(), ":2:")
}

func TestFileSourceMissingField(t *testing.T) {
	src := NewFileSource(strings.NewReader(`{"accession":["A"],"sequence":["M"],"index":[0]}`))
	_, err := src.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"description"`)
}

func TestFileOpenerMissingFile(t *testing.T) {
	_, err := FileOpener(filepath.Join(t.TempDir(), "nope.jsonl"))(context.Background())
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)
}

func TestFileOpenerRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(rowsJSONL), 0o644))

	open := FileOpener(path)
	for range 2 {
		src, err := open(context.Background())
		require.NoError(t, err)
		assert.Len(t, drain(t, src), 3)
		require.NoError(t, src.Close())
	}
}

func TestLimitAndSliceSource(t *testing.T) {
	rows := []*model.Row{
		{Accessions: []string{"A"}, Sequences: []string{"M"}, Descriptions: []string{""}, Indices: []int{0}},
		{Accessions: []string{"B"}, Sequences: []string{"M"}, Descriptions: []string{""}, Indices: []int{0}},
		{Accessions: []string{"C"}, Sequences: []string{"M"}, Descriptions: []string{""}, Indices: []int{0}},
	}

	assert.Len(t, drain(t, Limit(NewSliceSource(rows...), 2)), 2)
	assert.Len(t, drain(t, Limit(NewSliceSource(rows...), 0)), 3)
	assert.Len(t, drain(t, Limit(NewSliceSource(rows...), 10)), 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSliceSource(rows...).Next(ctx)
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = NewSliceSource().Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}
