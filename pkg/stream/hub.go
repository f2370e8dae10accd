package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/yumyai/uniref90/logger"
	"github.com/yumyai/uniref90/pkg/model"
)

const (
	DefaultEndpoint = "https://datasets-server.huggingface.co"
	DefaultDataset  = "microsoft/Dayhoff"
	DefaultConfig   = "uniref90"
	DefaultSplit    = "train"

	// The rows endpoint refuses pages longer than this.
	MaxPageSize = 100
)

var Splits = []string{"train", "test", "valid"}

// Dataset identifies one split of a hosted dataset.
type Dataset struct {
	Endpoint string
	Name     string
	Config   string
	Split    string
}

func DefaultDatasetFor(split string) Dataset {
	return Dataset{
		Endpoint: DefaultEndpoint,
		Name:     DefaultDataset,
		Config:   DefaultConfig,
		Split:    split,
	}
}

func (d Dataset) String() string {
	return fmt.Sprintf("%s/%s[%s]", d.Name, d.Config, d.Split)
}

// ParseSplit accepts one of Splits.
func ParseSplit(split string) (string, error) {
	for _, s := range Splits {
		if s == split {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown split %q (want one of %s)", split, strings.Join(Splits, ", "))
}

type HubOptions struct {
	PageSize  int
	Retries   int
	RetryWait time.Duration
	Timeout   time.Duration
	Token     string
}

// HubSource pages through the datasets-server rows endpoint. Transient
// transport failures are retried by the HTTP client up to Retries times;
// anything else ends the stream with model.ErrSourceUnavailable.
type HubSource struct {
	ds       Dataset
	opts     HubOptions
	client   *retryablehttp.Client
	page     []gjson.Result
	pos      int
	offset   int
	finished bool
}

func NewHubSource(ds Dataset, opts HubOptions) *HubSource {
	if opts.PageSize <= 0 || opts.PageSize > MaxPageSize {
		opts.PageSize = MaxPageSize
	}
	if ds.Endpoint == "" {
		ds.Endpoint = DefaultEndpoint
	}

	client := retryablehttp.NewClient()
	client.RetryMax = opts.Retries
	if opts.RetryWait > 0 {
		client.RetryWaitMin = opts.RetryWait
		client.RetryWaitMax = 4 * opts.RetryWait
	}
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}
	client.Logger = logger.NewLeveled()
	// Hand back the last response so the status can be reported.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &HubSource{ds: ds, opts: opts, client: client}
}

// HubOpener resolves the dataset by fetching its first page, so an
// unreachable dataset fails at open time.
func HubOpener(ds Dataset, opts HubOptions) Opener {
	return func(ctx context.Context) (Source, error) {
		src := NewHubSource(ds, opts)
		if err := src.fetch(ctx); err != nil {
			return nil, err
		}
		return src, nil
	}
}

func (h *HubSource) Next(ctx context.Context) (*model.Row, error) {
	for h.pos >= len(h.page) {
		if h.finished {
			return nil, io.EOF
		}
		if err := h.fetch(ctx); err != nil {
			return nil, err
		}
	}

	obj := h.page[h.pos]
	h.pos++

	if cells := truncatedCells(obj); len(cells) > 0 {
		return nil, fmt.Errorf("%s row %d: %w", h.ds, obj.Get("row_idx").Int(), &model.TruncatedRowError{Cells: cells})
	}

	row, err := rowFromJSON(obj.Get("row"))
	if err != nil {
		return nil, fmt.Errorf("%s row %d: %w", h.ds, obj.Get("row_idx").Int(), err)
	}
	return row, nil
}

func (h *HubSource) Close() error {
	h.page = nil
	h.finished = true
	return nil
}

func (h *HubSource) pageURL() string {
	q := url.Values{}
	q.Set("dataset", h.ds.Name)
	q.Set("config", h.ds.Config)
	q.Set("split", h.ds.Split)
	q.Set("offset", strconv.Itoa(h.offset))
	q.Set("length", strconv.Itoa(h.opts.PageSize))
	return strings.TrimRight(h.ds.Endpoint, "/") + "/rows?" + q.Encode()
}

func (h *HubSource) fetch(ctx context.Context) error {
	u := h.pageURL()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", model.ErrSourceUnavailable, h.ds, err)
	}
	if h.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.opts.Token)
	}

	logger.Debug("Fetching rows", zap.String("url", u))

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", model.ErrSourceUnavailable, h.ds, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: reading page: %w", model.ErrSourceUnavailable, h.ds, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: %s: status %d: %s", model.ErrSourceUnavailable, h.ds, resp.StatusCode, msg)
	}

	if !gjson.ValidBytes(body) {
		return fmt.Errorf("%w: %s: page at offset %d is not valid JSON", model.ErrSourceUnavailable, h.ds, h.offset)
	}

	parsed := gjson.ParseBytes(body)
	rows := parsed.Get("rows").Array()

	h.page = rows
	h.pos = 0
	h.offset += len(rows)

	total := parsed.Get("num_rows_total")
	if len(rows) == 0 || (total.Exists() && int64(h.offset) >= total.Int()) {
		h.finished = true
	}
	return nil
}
