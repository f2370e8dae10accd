package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/uniref90/pkg/model"
)

type fakeRow struct {
	Accession   []string `json:"accession"`
	Sequence    []string `json:"sequence"`
	Description []string `json:"description"`
	Index       []int    `json:"index"`
}

func makeFakeRows(n int) []fakeRow {
	rows := make([]fakeRow, n)
	for i := range rows {
		size := i%3 + 1
		for j := 0; j < size; j++ {
			acc := "UniRef90_R" + strconv.Itoa(i) + "M" + strconv.Itoa(j)
			rows[i].Accession = append(rows[i].Accession, acc)
			rows[i].Sequence = append(rows[i].Sequence, "MKV")
			rows[i].Description = append(rows[i].Description, "Protein n=1")
			rows[i].Index = append(rows[i].Index, j)
		}
	}
	return rows
}

// fakeRowsServer mimics the datasets-server /rows endpoint.
func fakeRowsServer(t *testing.T, rows []fakeRow, requests *int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rows", func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			atomic.AddInt32(requests, 1)
		}
		q := r.URL.Query()
		if q.Get("dataset") != DefaultDataset || q.Get("config") != DefaultConfig {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"The dataset does not exist."}`))
			return
		}
		offset, _ := strconv.Atoi(q.Get("offset"))
		length, _ := strconv.Atoi(q.Get("length"))

		type item struct {
			RowIdx int     `json:"row_idx"`
			Row    fakeRow `json:"row"`
		}
		page := []item{}
		for i := offset; i < offset+length && i < len(rows); i++ {
			page = append(page, item{RowIdx: i, Row: rows[i]})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"rows":              page,
			"num_rows_total":    len(rows),
			"num_rows_per_page": length,
			"partial":           false,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func drain(t *testing.T, src Source) []*model.Row {
	t.Helper()
	var out []*model.Row
	for {
		row, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, row)
	}
}

func TestHubSourcePaging(t *testing.T) {
	var requests int32
	rows := makeFakeRows(7)
	srv := fakeRowsServer(t, rows, &requests)

	ds := DefaultDatasetFor("train")
	ds.Endpoint = srv.URL

	src, err := HubOpener(ds, HubOptions{PageSize: 3})(context.Background())
	require.NoError(t, err)
	defer src.Close()

	got := drain(t, src)
	require.Len(t, got, 7)
	assert.Equal(t, rows[4].Accession, got[4].Accessions)
	assert.Equal(t, rows[5].Index, got[5].Indices)
	// pages of 3, 3, 1; the short last page ends the stream
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestHubSourceLimit(t *testing.T) {
	var requests int32
	srv := fakeRowsServer(t, makeFakeRows(250), &requests)

	ds := DefaultDatasetFor("test")
	ds.Endpoint = srv.URL

	src, err := HubOpener(ds, HubOptions{})(context.Background())
	require.NoError(t, err)

	got := drain(t, Limit(src, 5))
	assert.Len(t, got, 5)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "a capped read does not fetch further pages")
}

func TestHubSourceUnavailable(t *testing.T) {
	srv := fakeRowsServer(t, makeFakeRows(1), nil)

	ds := Dataset{Endpoint: srv.URL, Name: "nobody/nothing", Config: "none", Split: "train"}
	_, err := HubOpener(ds, HubOptions{Retries: 3, RetryWait: time.Millisecond})(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "does not exist")
}

func TestHubSourceRetriesTransientFailure(t *testing.T) {
	var calls int32
	rows := makeFakeRows(2)
	inner := fakeRowsServer(t, rows, nil)

	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		http.Redirect(w, r, inner.URL+r.URL.RequestURI(), http.StatusTemporaryRedirect)
	}))
	t.Cleanup(flaky.Close)

	ds := DefaultDatasetFor("train")
	ds.Endpoint = flaky.URL

	src, err := HubOpener(ds, HubOptions{Retries: 2, RetryWait: time.Millisecond})(context.Background())
	require.NoError(t, err)
	assert.Len(t, drain(t, src), 2)
}

func TestHubSourceServerErrorWithoutRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	ds := DefaultDatasetFor("train")
	ds.Endpoint = srv.URL

	_, err := HubOpener(ds, HubOptions{Retries: 0})(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "500")
}

func TestHubSourceRaggedRow(t *testing.T) {
	rows := makeFakeRows(2)
	rows[1].Sequence = rows[1].Sequence[:1]
	srv := fakeRowsServer(t, rows, nil)

	ds := DefaultDatasetFor("train")
	ds.Endpoint = srv.URL

	src, err := HubOpener(ds, HubOptions{})(context.Background())
	require.NoError(t, err)

	_, err = src.Next(context.Background())
	require.NoError(t, err)

	_, err = src.Next(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRaggedRow)
	assert.Contains(t, err.Error(), "row 1")
}

func TestParseSplit(t *testing.T) {
	for _, s := range Splits {
		got, err := ParseSplit(s)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseSplit("validation")
	assert.Error(t, err)
}

func TestHubSourceTruncatedCells(t *testing.T) {
	const page = `{"rows":[
{"row_idx":0,"row":{"accession":["A","A"],"sequence":"[\"MKVLAAGIV","description":["x","y"],"index":[0,1]},"truncated_cells":["sequence"]},
{"row_idx":1,"row":{"accession":"[\"B","sequence":"[\"MK","description":"[\"x","index":"[0,1,"},"truncated_cells":["accession","sequence","description","index"]},
{"row_idx":2,"row":{"accession":["C"],"sequence":["M"],"description":["z"],"index":[0]},"truncated_cells":[]}
],"num_rows_total":3}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	ds := DefaultDatasetFor("train")
	ds.Endpoint = srv.URL

	src, err := HubOpener(ds, HubOptions{})(context.Background())
	require.NoError(t, err)

	_, err = src.Next(context.Background())
	require.ErrorIs(t, err, model.ErrTruncatedRow)
	assert.NotErrorIs(t, err, model.ErrRaggedRow)
	var truncated *model.TruncatedRowError
	require.ErrorAs(t, err, &truncated)
	assert.Equal(t, []string{"sequence"}, truncated.Cells)
	assert.Contains(t, err.Error(), "row 0")

	_, err = src.Next(context.Background())
	require.ErrorAs(t, err, &truncated)
	assert.Equal(t, []string{"accession", "sequence", "description", "index"}, truncated.Cells)

	row, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, row.Accessions)
}
