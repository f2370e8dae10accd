package export

import (
	"bufio"
	"context"
	"fmt"
	"iter"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/yumyai/uniref90/internal/util"
	"github.com/yumyai/uniref90/logger"
	"github.com/yumyai/uniref90/pkg/db"
	"github.com/yumyai/uniref90/pkg/model"
)

// Progress is logged every ProgressEvery exported clusters.
const ProgressEvery = 1000

var exportedClustersCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "uniref90_export_clusters_total",
	Help: "Clusters written by exporters, by encoding.",
}, []string{"format"})

type Exporter struct {
	Format Format
	Shape  Shape
	// Recorded as the run source in sqlite exports.
	Source string
	// Used for s3:// destinations; an S3Uploader from the environment when nil.
	Uploader Uploader
}

type Report struct {
	Format   Format `json:"format"`
	Shape    Shape  `json:"shape"`
	Dest     string `json:"dest"`
	Clusters int    `json:"clusters"`
	Members  int    `json:"members"`
	RunID    string `json:"run_id,omitempty"`
}

func New(format Format, shape Shape) *Exporter {
	return &Exporter{Format: format, Shape: shape}
}

// Export writes clusters to dest, a local path or s3://bucket/key. A failure
// part way through leaves whatever was written so far.
func (e *Exporter) Export(ctx context.Context, clusters iter.Seq2[*model.Cluster, error], dest string) (Report, error) {
	report := Report{Format: e.Format, Shape: e.Shape, Dest: dest}

	bucket, key, remote, err := parseS3URL(dest)
	if err != nil {
		return report, err
	}

	path := dest
	if remote {
		tmp, err := os.CreateTemp("", "uniref90-export-*."+string(e.Format))
		if err != nil {
			return report, err
		}
		path = tmp.Name()
		tmp.Close()
		defer os.Remove(path)
	} else if err := util.EnsureParentDir(path); err != nil {
		return report, fmt.Errorf("create parent of %s: %w", path, err)
	}

	counted := e.count(clusters, &report)

	if e.Format == FormatSQLite {
		report.RunID, err = e.writeSQLite(ctx, path, counted)
	} else {
		err = e.writeFile(path, counted)
	}
	if err != nil {
		return report, fmt.Errorf("export %s to %s: %w", e.Format, dest, err)
	}

	if remote {
		if err := e.upload(ctx, path, bucket, key); err != nil {
			return report, err
		}
	}

	logger.Info("Exported clusters",
		zap.String("format", string(e.Format)),
		zap.String("shape", string(e.Shape)),
		zap.String("dest", dest),
		zap.Int("clusters", report.Clusters),
		zap.Int("members", report.Members))
	return report, nil
}

// count tallies clusters and members as they pass and logs progress.
func (e *Exporter) count(clusters iter.Seq2[*model.Cluster, error], report *Report) iter.Seq2[*model.Cluster, error] {
	counter := exportedClustersCounter.WithLabelValues(string(e.Format))
	return func(yield func(*model.Cluster, error) bool) {
		for c, err := range clusters {
			if err == nil {
				report.Clusters++
				report.Members += c.Size()
				counter.Inc()
				if report.Clusters%ProgressEvery == 0 {
					logger.Info("Exporting", zap.Int("clusters", report.Clusters), zap.Int("members", report.Members))
				}
			}
			if !yield(c, err) {
				return
			}
		}
	}
}

func (e *Exporter) writeFile(path string, clusters iter.Seq2[*model.Cluster, error]) error {
	write, ok := streamWriters[e.Format]
	if !ok {
		return fmt.Errorf("%w %q", model.ErrUnknownFormat, e.Format)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriterSize(f, 1<<20)
	if err := write(bw, e.Shape, clusters); err != nil {
		bw.Flush()
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func (e *Exporter) writeSQLite(ctx context.Context, path string, clusters iter.Seq2[*model.Cluster, error]) (string, error) {
	store, err := db.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer store.Close()

	if err := store.Init(ctx); err != nil {
		return "", err
	}
	runID, err := store.BeginRun(ctx, e.Source)
	if err != nil {
		return "", err
	}
	return runID, store.InsertClusters(ctx, clusters, nil)
}

func (e *Exporter) upload(ctx context.Context, path, bucket, key string) error {
	uploader := e.Uploader
	if uploader == nil {
		s3u, err := NewS3Uploader(ctx)
		if err != nil {
			return err
		}
		uploader = s3u
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	logger.Debug("Uploading export", zap.String("bucket", bucket), zap.String("key", key))
	return uploader.Upload(ctx, bucket, key, f)
}
