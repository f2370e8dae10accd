package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yumyai/uniref90/pkg/render"
	"github.com/yumyai/uniref90/pkg/view"
)

const (
	countFlag       = "count"
	samplesFlag     = "samples"
	maxSearchFlag   = "max-search"
	maxClustersFlag = "max-clusters"
	jsonFlag        = "json"
	fastaFlag       = "fasta"
)

// NewClustersCommand groups the commands reading the native one-cluster-per-row layout.
func NewClustersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Read clusters in the dataset's native one-cluster-per-row layout",
		Long: `Read clusters in the dataset's native one-cluster-per-row layout.

Each subcommand opens a fresh stream; nothing is cached between calls.`,
	}

	cmd.AddCommand(newSampleCommand())
	cmd.AddCommand(newStatsCommand())
	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newFilterCommand())
	cmd.AddCommand(newExportCommand())

	return cmd
}

func openView() (*view.View, string, error) {
	open, source, err := sourceOpener()
	if err != nil {
		return nil, "", err
	}
	return view.New(open), source, nil
}

func newSampleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print the first clusters as JSON lines",
		Args:  cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindFlags(cmd.Flags(), countFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, _, err := openView()
			if err != nil {
				return err
			}
			_, err = writeRecords(cmd.OutOrStdout(), v.Iterate(cmd.Context(), viper.GetInt(countFlag)))
			return err
		},
	}
	cmd.Flags().IntP(countFlag, "n", 10, "clusters to print")
	return cmd
}

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise cluster sizes over a sample",
		Long:  "Summarise cluster sizes over the first --samples clusters. The result approximates the whole dataset.",
		Args:  cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindFlags(cmd.Flags(), samplesFlag, jsonFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, _, err := openView()
			if err != nil {
				return err
			}
			st, err := v.Statistics(cmd.Context(), viper.GetInt(samplesFlag))
			if err != nil {
				return err
			}
			if viper.GetBool(jsonFlag) {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			return render.RenderStatistics(cmd.OutOrStdout(), st)
		},
	}
	cmd.Flags().Int(samplesFlag, view.DefaultStatSamples, "clusters to sample")
	cmd.Flags().Bool(jsonFlag, false, "print JSON instead of a report")
	return cmd
}

func newGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get CLUSTER_ID",
		Short: "Find a cluster by ID with a bounded linear scan",
		Args:  cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindFlags(cmd.Flags(), maxSearchFlag, fastaFlag)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _, err := openView()
			if err != nil {
				return err
			}
			c, err := v.GetByID(cmd.Context(), args[0], viper.GetInt(maxSearchFlag))
			if err != nil {
				return err
			}
			if viper.GetBool(fastaFlag) {
				return render.RenderFASTA(cmd.OutOrStdout(), c)
			}
			return writeJSON(cmd.OutOrStdout(), c.Record())
		},
	}
	cmd.Flags().Int(maxSearchFlag, view.DefaultMaxSearch, "clusters to scan before giving up")
	cmd.Flags().Bool(fastaFlag, false, "print member sequences as FASTA")
	return cmd
}

func newFilterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Print clusters whose size lies in a range",
		Args:  cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindFlags(cmd.Flags(), minSizeFlag, maxSizeFlag, maxClustersFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, _, err := openView()
			if err != nil {
				return err
			}
			_, err = writeRecords(cmd.OutOrStdout(),
				v.FilterBySize(cmd.Context(), sizeRange(), viper.GetInt(maxClustersFlag)))
			return err
		},
	}
	addSizeFlags(cmd.Flags())
	cmd.Flags().Int(maxClustersFlag, 10, "matches to print, 0 for all")
	return cmd
}

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export native-layout clusters",
		Args:  cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindFlags(cmd.Flags(), outputFlag, formatFlag, shapeFlag, minSizeFlag, maxSizeFlag, maxClustersFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if viper.GetString(outputFlag) == "" {
				return fmt.Errorf("--%s is required", outputFlag)
			}
			v, source, err := openView()
			if err != nil {
				return err
			}
			exp, err := newExporter(source)
			if err != nil {
				return err
			}

			clusters := v.Iterate(cmd.Context(), viper.GetInt(maxClustersFlag))
			if r := sizeRange(); r.Min > 1 || r.Max != 0 {
				clusters = v.FilterBySize(cmd.Context(), r, viper.GetInt(maxClustersFlag))
			}

			report, err := exp.Export(cmd.Context(), clusters, viper.GetString(outputFlag))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d clusters (%d sequences) to %s\n", report.Clusters, report.Members, report.Dest)
			return nil
		},
	}
	addExportFlags(cmd.Flags())
	addSizeFlags(cmd.Flags())
	cmd.Flags().Int(maxClustersFlag, 1000, "clusters to export, 0 for all")
	return cmd
}
