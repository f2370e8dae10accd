package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/uniref90/pkg/db"
	"github.com/yumyai/uniref90/pkg/model"
)

func sampleClusters() *model.ClusterSet {
	set := model.NewClusterSet()

	z := set.GetOrCreate("UniRef90_Z")
	z.Add(model.Member{Accession: "UniRef90_Z", Sequence: "MKT", Description: `Kinase "alpha", n=2 Tax=Homo sapiens`, Index: 0})
	z.Add(model.Member{Accession: "UniRef90_Z", Sequence: "MKTA", Description: "Kinase | beta\tn=2", Index: 1})

	a := set.GetOrCreate("UniRef90_A")
	a.Add(model.Member{Accession: "UniRef90_A", Sequence: "MAAA", Description: "Unknown <protein> & co", Index: 3})

	return set
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

func exportTo(t *testing.T, format Format, shape Shape, name string) (string, Report) {
	t.Helper()
	dest := filepath.Join(t.TempDir(), "nested", name)
	report, err := New(format, shape).Export(context.Background(), sampleClusters().Stream(), dest)
	require.NoError(t, err)
	return dest, report
}

func TestRoundTrip(t *testing.T) {
	want := collect(t, sampleClusters().Stream())

	tests := []struct {
		format Format
		shape  Shape
		name   string
	}{
		{FormatJSONL, ShapeCluster, "clusters.jsonl"},
		{FormatJSONL, ShapeSequence, "sequences.jsonl"},
		{FormatJSON, ShapeCluster, "clusters.json"},
		{FormatGob, ShapeCluster, "clusters.gob"},
		{FormatGob, ShapeSequence, "sequences.gob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, report := exportTo(t, tt.format, tt.shape, tt.name)
			assert.Equal(t, 2, report.Clusters)
			assert.Equal(t, 3, report.Members)

			seq, err := ReadFile(dest)
			require.NoError(t, err)
			got := collect(t, seq)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestJSONLClusterRecord(t *testing.T) {
	dest, _ := exportTo(t, FormatJSONL, ShapeCluster, "out.jsonl")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `{"cluster_id":"UniRef90_Z","cluster_size":2,"accessions":[`))
	assert.Contains(t, lines[0], `"indices":[0,1]`)
}

func TestJSONKeepsInsertionOrder(t *testing.T) {
	dest, _ := exportTo(t, FormatJSON, ShapeCluster, "out.json")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)

	z := strings.Index(string(data), `"UniRef90_Z"`)
	a := strings.Index(string(data), `"UniRef90_A"`)
	require.NotEqual(t, -1, z)
	require.NotEqual(t, -1, a)
	assert.Less(t, z, a, "Z was inserted first and must come first")
}

func TestCSVColumns(t *testing.T) {
	dest, _ := exportTo(t, FormatCSV, ShapeSequence, "out.csv")
	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"cluster_id", "cluster_size", "accession", "sequence", "description", "index"}, records[0])
	assert.Equal(t, []string{"UniRef90_Z", "2", "UniRef90_Z", "MKT", `Kinase "alpha", n=2 Tax=Homo sapiens`, "0"}, records[1])
	assert.Equal(t, "3", records[3][5])

	dest, _ = exportTo(t, FormatCSV, ShapeCluster, "clusters.csv")
	f2, err := os.Open(dest)
	require.NoError(t, err)
	defer f2.Close()

	records, err = csv.NewReader(f2).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "MKT|MKTA", records[1][3])
	assert.Equal(t, "0|1", records[1][5])
}

func TestSQLiteExport(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "clusters.db")
	exp := New(FormatSQLite, ShapeCluster)
	exp.Source = "unit-test"

	report, err := exp.Export(context.Background(), sampleClusters().Stream(), dest)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)

	store, err := db.Open(context.Background(), dest)
	require.NoError(t, err)
	defer store.Close()

	c, err := store.GetCluster(context.Background(), "UniRef90_Z")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Size())

	runs, err := store.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "unit-test", runs[0].Source)
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"gob", "json", "JSONL", " csv ", "sqlite"} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}

	_, err := ParseFormat("parquet")
	assert.ErrorIs(t, err, model.ErrUnknownFormat)
	assert.Contains(t, err.Error(), "jsonl")

	_, err = ParseShape("tree")
	assert.ErrorIs(t, err, model.ErrUnknownFormat)

	f, err := FormatFromPath("/tmp/out.db")
	require.NoError(t, err)
	assert.Equal(t, FormatSQLite, f)

	_, err = ReadFile("/tmp/out.csv")
	assert.ErrorIs(t, err, model.ErrUnknownFormat)
}

type fakeUploader struct {
	bucket, key string
	body        []byte
}

func (f *fakeUploader) Upload(_ context.Context, bucket, key string, body io.ReadSeeker) error {
	f.bucket, f.key = bucket, key
	var err error
	f.body, err = io.ReadAll(body)
	return err
}

func TestExportToS3(t *testing.T) {
	up := &fakeUploader{}
	exp := New(FormatJSONL, ShapeCluster)
	exp.Uploader = up

	report, err := exp.Export(context.Background(), sampleClusters().Stream(), "s3://bucket/exports/clusters.jsonl")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Clusters)
	assert.Equal(t, "bucket", up.bucket)
	assert.Equal(t, "exports/clusters.jsonl", up.key)

	got := collect(t, ReadJSONL(strings.NewReader(string(up.body))))
	assert.Len(t, got, 2)

	_, err = exp.Export(context.Background(), sampleClusters().Stream(), "s3://bucket")
	assert.Error(t, err)
}

func TestExportStopsOnSourceError(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.jsonl")
	failing := func(yield func(*model.Cluster, error) bool) {
		if !yield(&model.Cluster{ID: "ok", Members: []model.Member{{Accession: "ok"}}}, nil) {
			return
		}
		yield(nil, model.ErrSourceUnavailable)
	}

	report, err := New(FormatJSONL, ShapeCluster).Export(context.Background(), failing, dest)
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)
	assert.Equal(t, 1, report.Clusters)
}

func TestReadRejectsEmptyClusters(t *testing.T) {
	line := `{"cluster_id":"UniRef90_X","cluster_size":3,"accessions":[],"sequences":[],"descriptions":[],"indices":[]}` + "\n"
	var got []*model.Cluster
	var lastErr error
	for c, err := range ReadJSONL(strings.NewReader(line)) {
		if err != nil {
			lastErr = err
			break
		}
		got = append(got, c)
	}
	assert.Empty(t, got)
	assert.ErrorIs(t, lastErr, model.ErrEmptyRow)

	lastErr = nil
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(model.ClusterRecord{ClusterID: "UniRef90_X"}))
	for _, err := range ReadGob(&buf) {
		lastErr = err
		break
	}
	assert.ErrorIs(t, lastErr, model.ErrEmptyRow)
}

func TestJSONRejectsRepeatedClusterID(t *testing.T) {
	repeated := func(yield func(*model.Cluster, error) bool) {
		for _, desc := range []string{"first row", "second row"} {
			c := &model.Cluster{ID: "UniRef90_R"}
			c.Add(model.Member{Accession: "UniRef90_R", Sequence: "MK", Description: desc})
			if !yield(c, nil) {
				return
			}
		}
	}

	dest := filepath.Join(t.TempDir(), "rows.json")
	_, err := New(FormatJSON, ShapeCluster).Export(context.Background(), repeated, dest)
	assert.ErrorIs(t, err, model.ErrDuplicateCluster)

	report, err := New(FormatJSON, ShapeSequence).Export(context.Background(), repeated, dest)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Members)
}
