package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/uniref90/pkg/model"
	"github.com/yumyai/uniref90/pkg/stream"
)

// clusterRow builds a native-layout row of the given size whose first accession is id.
func clusterRow(id string, size int) *model.Row {
	r := &model.Row{}
	for i := 0; i < size; i++ {
		acc := id
		if i > 0 {
			acc = fmt.Sprintf("%s_m%d", id, i)
		}
		r.Accessions = append(r.Accessions, acc)
		r.Sequences = append(r.Sequences, "MSEQ"+acc)
		r.Descriptions = append(r.Descriptions, "Kinase n=1 Tax=Test TaxID=1")
		r.Indices = append(r.Indices, i)
	}
	return r
}

func sizedView(sizes ...int) *View {
	rows := make([]*model.Row, len(sizes))
	for i, s := range sizes {
		rows[i] = clusterRow(fmt.Sprintf("UniRef90_%d", i), s)
	}
	return New(stream.SliceOpener(rows...))
}

func collect(t *testing.T, seq func(func(*model.Cluster, error) bool)) []*model.Cluster {
	t.Helper()
	var out []*model.Cluster
	for c, err := range seq {
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func ids(clusters []*model.Cluster) []string {
	out := make([]string, len(clusters))
	for i, c := range clusters {
		out[i] = c.ID
	}
	return out
}

func TestIterate(t *testing.T) {
	v := sizedView(1, 4, 2)
	got := collect(t, v.Iterate(context.Background(), 0))

	require.Len(t, got, 3)
	assert.Equal(t, "UniRef90_1", got[1].ID)
	assert.Equal(t, 4, got[1].Size())
	assert.Equal(t, "UniRef90_1_m3", got[1].Members[3].Accession)
}

func TestIterateCapIsPrefixOfUnbounded(t *testing.T) {
	v := sizedView(1, 3, 2, 5, 1, 1, 7)
	full := collect(t, v.Iterate(context.Background(), 0))

	for n := 1; n <= 9; n++ {
		capped := collect(t, v.Iterate(context.Background(), n))
		assert.LessOrEqual(t, len(capped), n)
		want := full[:min(n, len(full))]
		if diff := cmp.Diff(want, capped); diff != "" {
			t.Fatalf("cap %d mismatch (-want +got):\n%s", n, diff)
		}
	}
}

func TestIterateSkipsEmptyRows(t *testing.T) {
	v := New(stream.SliceOpener(clusterRow("A", 1), &model.Row{}, clusterRow("B", 2)))
	got := collect(t, v.Iterate(context.Background(), 2))
	assert.Equal(t, []string{"A", "B"}, ids(got))
}

func TestIterateStopsOnRaggedRow(t *testing.T) {
	bad := clusterRow("BAD", 2)
	bad.Descriptions = bad.Descriptions[:1]
	v := New(stream.SliceOpener(clusterRow("A", 1), bad, clusterRow("C", 1)))

	var seen []string
	var lastErr error
	for c, err := range v.Iterate(context.Background(), 0) {
		if err != nil {
			lastErr = err
			continue
		}
		seen = append(seen, c.ID)
	}
	assert.Equal(t, []string{"A"}, seen)
	assert.ErrorIs(t, lastErr, model.ErrRaggedRow)
}

func TestIterateOpenError(t *testing.T) {
	v := New(func(context.Context) (stream.Source, error) {
		return nil, model.ErrSourceUnavailable
	})
	_, err := v.Sample(context.Background(), 3)
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)
}

func TestGetByID(t *testing.T) {
	v := sizedView(1, 2, 3, 4)

	c, err := v.GetByID(context.Background(), "UniRef90_2", DefaultMaxSearch)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Size())

	// Beyond the search window.
	_, err = v.GetByID(context.Background(), "UniRef90_3", 2)
	assert.ErrorIs(t, err, model.ErrClusterNotFound)
	assert.ErrorContains(t, err, "searched 2 clusters")

	// The source runs out before the window does.
	_, err = v.GetByID(context.Background(), "UniRef90_missing", DefaultMaxSearch)
	assert.ErrorIs(t, err, model.ErrClusterNotFound)
	assert.ErrorContains(t, err, "searched 4 clusters")
}

func TestFilterBySize(t *testing.T) {
	v := sizedView(1, 1, 3, 15, 2)

	got := collect(t, v.FilterBySize(context.Background(), model.SizeRange{Min: 2, Max: 10}, 0))
	assert.Equal(t, []string{"UniRef90_2", "UniRef90_4"}, ids(got))

	// The result cap is separate from the scan: the first match is past row 2.
	got = collect(t, v.FilterBySize(context.Background(), model.SizeRange{Min: 2, Max: 10}, 1))
	assert.Equal(t, []string{"UniRef90_2"}, ids(got))

	got = collect(t, v.FilterBySize(context.Background(), model.SizeRange{Min: 10}, 0))
	assert.Equal(t, []string{"UniRef90_3"}, ids(got))
}

func TestSampleAndStatistics(t *testing.T) {
	v := sizedView(1, 3, 2, 200, 1)

	sample, err := v.Sample(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, sample, 3)

	st, err := v.Statistics(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, st.Sampled)
	assert.Equal(t, 4, st.Clusters)
	assert.Equal(t, 206, st.Members)
	assert.Equal(t, 200, st.Max)
	assert.Equal(t, 1, st.Large)

	empty, err := New(stream.SliceOpener()).Statistics(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, empty.NoData)
}

func TestVerify(t *testing.T) {
	lines := []string{
		`{"accession":["A","A2"],"sequence":["M","M"],"description":["Kinase n=2","Kinase n=2"],"index":[0,1]}`,
		`{"accession":["B","B2"],"sequence":["M"],"description":["x","y"],"index":[0,1]}`,
		`{"accession":["C","C2"],"sequence":["M","M"],"description":["Kinase n=2","Ligase n=1"],"index":[0,1]}`,
		`{"accession":[],"sequence":[],"description":[],"index":[]}`,
		`{"accession":["D"],"sequence":["M"],"description":["Kinase"],"index":[0]}`,
	}
	path := filepath.Join(t.TempDir(), "rows.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))

	report, err := New(stream.FileOpener(path)).Verify(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Rows)
	assert.Equal(t, []int{2}, report.Ragged)
	assert.False(t, report.OK())
	assert.Equal(t, 1, report.Empty)
	assert.Equal(t, 2, report.SingleProtein)
	assert.Equal(t, 1, report.MixedProtein)
	assert.Equal(t, 3, report.Sizes.Clusters)

	capped, err := New(stream.FileOpener(path)).Verify(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, capped.OK())
	assert.Equal(t, 1, capped.Rows)
}

// scriptedSource replays fixed Next results.
type scriptedSource struct {
	rows []*model.Row
	errs []error
	pos  int
}

func (s *scriptedSource) Next(context.Context) (*model.Row, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	i := s.pos
	s.pos++
	return s.rows[i], s.errs[i]
}

func (s *scriptedSource) Close() error { return nil }

func TestVerifyCountsTruncatedRowsSeparately(t *testing.T) {
	truncated := fmt.Errorf("row 1: %w", &model.TruncatedRowError{Cells: []string{model.FieldSequence}})
	open := func(context.Context) (stream.Source, error) {
		return &scriptedSource{
			rows: []*model.Row{clusterRow("A", 2), nil, clusterRow("C", 1)},
			errs: []error{nil, truncated, nil},
		}, nil
	}

	report, err := New(open).Verify(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, []int{2}, report.Truncated)
	assert.Contains(t, report.TruncatedError[0], "sequence")
	assert.Empty(t, report.Ragged)
	assert.True(t, report.OK())
	assert.Equal(t, 2, report.Sizes.Clusters)
}
