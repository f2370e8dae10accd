package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yumyai/uniref90/logger"
	"github.com/yumyai/uniref90/pkg/accumulator"
	"github.com/yumyai/uniref90/pkg/export"
	"github.com/yumyai/uniref90/pkg/render"
)

const (
	maxRowsFlag = "max-rows"
	mergeFlag   = "merge"
)

func NewGroupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Regroup streamed members into clusters keyed by accession",
		Long: `Stream rows, append every member to the cluster keyed by its own accession,
print size statistics and optionally export the clusters.

The whole mapping is held in memory; keep --max-rows at sample scale.`,
		Args: cobra.NoArgs,
		RunE: runGroup,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindFlags(cmd.Flags(), maxRowsFlag, mergeFlag, outputFlag, formatFlag, shapeFlag, minSizeFlag, maxSizeFlag)
		},
	}

	flags := cmd.Flags()
	flags.Int(maxRowsFlag, 1000, "rows to ingest, 0 for the whole split")
	flags.StringSlice(mergeFlag, nil, "previous exports (jsonl, json or gob) to load before ingesting")
	addExportFlags(flags)
	addSizeFlags(flags)

	// NOTE: if you add a new flag here, add the binding in PreRun

	return cmd
}

func runGroup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	open, source, err := sourceOpener()
	if err != nil {
		return err
	}

	acc := accumulator.New()

	for _, path := range viper.GetStringSlice(mergeFlag) {
		clusters, err := export.ReadFile(path)
		if err != nil {
			return err
		}
		n, err := acc.Load(clusters)
		if err != nil {
			return fmt.Errorf("merge %s: %w", path, err)
		}
		logger.Info("Merged previous export", zap.String("path", path), zap.Int("clusters", n))
	}

	src, err := open(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	logger.Info("Grouping clusters", zap.String("source", source), zap.Int("max_rows", viper.GetInt(maxRowsFlag)))
	if _, err := acc.IngestStream(ctx, src, viper.GetInt(maxRowsFlag)); err != nil {
		return err
	}

	if err := render.RenderStatistics(cmd.OutOrStdout(), acc.Statistics()); err != nil {
		return err
	}

	dest := viper.GetString(outputFlag)
	if dest == "" {
		return nil
	}

	exp, err := newExporter(source)
	if err != nil {
		return err
	}
	report, err := exp.Export(ctx, acc.FilterBySize(sizeRange()).Stream(), dest)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d clusters (%d sequences) to %s\n", report.Clusters, report.Members, report.Dest)
	return nil
}
