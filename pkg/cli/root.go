// Package cli holds the uniref90 commands. Flags can also be set through
// UNIREF90_* environment variables or a config.yaml, in that order of precedence.
package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yumyai/uniref90/logger"
	"github.com/yumyai/uniref90/pkg/stream"
)

const (
	logLevelFlag    = "log-level"
	inputFlag       = "input"
	endpointFlag    = "endpoint"
	datasetFlag     = "dataset"
	configFlag      = "config"
	splitFlag       = "split"
	pageSizeFlag    = "page-size"
	httpRetriesFlag = "http-retries"
	httpTimeoutFlag = "http-timeout"
	hfTokenFlag     = "hf-token"
)

// NewRootCommand enables all children commands to read flags from CLI flags, environment variables prefixed with UNIREF90, or config.yaml (in that order).
func NewRootCommand() *cobra.Command {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("UNIREF90")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for _, path := range []string{"$HOME/.uniref90", "."} {
		viper.AddConfigPath(path)
	}
	configErr := viper.ReadInConfig()

	mustBindEnv(hfTokenFlag, "UNIREF90_HF_TOKEN", "HF_TOKEN")

	cmd := &cobra.Command{
		Use:   "uniref90",
		Short: "Reorganize the UniRef90 protein dataset into sequence clusters",
		Long: `Reorganize the UniRef90 protein dataset into sequence clusters.

Rows are streamed from the Hugging Face datasets-server (or a local JSONL replay
given with --input) and either regrouped by accession or read in their native
one-cluster-per-row layout, then summarised, filtered and exported.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitLogger(logger.ParseLevel(viper.GetString(logLevelFlag))); err != nil {
				return err
			}
			if configErr == nil {
				logger.Debug("Loaded config file " + viper.ConfigFileUsed())
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(logLevelFlag, "info", "log level: debug, info, warn or error")
	flags.String(inputFlag, "", "read rows from a local JSONL file instead of the datasets-server")
	flags.String(endpointFlag, stream.DefaultEndpoint, "datasets-server base URL")
	flags.String(datasetFlag, stream.DefaultDataset, "dataset name")
	flags.String(configFlag, stream.DefaultConfig, "dataset config")
	flags.String(splitFlag, stream.DefaultSplit, "dataset split: "+strings.Join(stream.Splits, ", "))
	flags.Int(pageSizeFlag, stream.MaxPageSize, "rows requested per page (at most 100)")
	flags.Int(httpRetriesFlag, 3, "retries for transient HTTP failures")
	flags.Duration(httpTimeoutFlag, defaultHTTPTimeout, "timeout of a single HTTP request")
	flags.String(hfTokenFlag, "", "Hugging Face access token (also read from HF_TOKEN)")

	for _, name := range []string{
		logLevelFlag, inputFlag, endpointFlag, datasetFlag, configFlag, splitFlag,
		pageSizeFlag, httpRetriesFlag, httpTimeoutFlag, hfTokenFlag,
	} {
		mustBindPFlag(name, flags.Lookup(name))
	}

	cmd.AddCommand(NewGroupCommand())
	cmd.AddCommand(NewClustersCommand())
	cmd.AddCommand(NewVerifyCommand())
	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
