package cli

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yumyai/uniref90/pkg/export"
	"github.com/yumyai/uniref90/pkg/model"
	"github.com/yumyai/uniref90/pkg/stream"
)

const defaultHTTPTimeout = 60 * time.Second

// mustBindPFlag attempts to bind a specific key to a pflag (as used by cobra) and panics
// if the binding fails with a non-nil error.
func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic("failed to bind pflag: " + err.Error())
	}
}

func mustBindEnv(input ...string) {
	if err := viper.BindEnv(input...); err != nil {
		panic("failed to bind env key: " + err.Error())
	}
}

// bindFlags binds local flags of a command; call it from PreRun so commands
// sharing a flag name do not overwrite each other's binding.
func bindFlags(flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		mustBindPFlag(name, flags.Lookup(name))
	}
}

// sourceOpener builds the row source from configuration and names it.
func sourceOpener() (stream.Opener, string, error) {
	if input := viper.GetString(inputFlag); input != "" {
		return stream.FileOpener(input), input, nil
	}

	split, err := stream.ParseSplit(viper.GetString(splitFlag))
	if err != nil {
		return nil, "", err
	}

	ds := stream.Dataset{
		Endpoint: viper.GetString(endpointFlag),
		Name:     viper.GetString(datasetFlag),
		Config:   viper.GetString(configFlag),
		Split:    split,
	}
	opts := stream.HubOptions{
		PageSize: viper.GetInt(pageSizeFlag),
		Retries:  viper.GetInt(httpRetriesFlag),
		Timeout:  viper.GetDuration(httpTimeoutFlag),
		Token:    viper.GetString(hfTokenFlag),
	}
	return stream.HubOpener(ds, opts), ds.String(), nil
}

const (
	outputFlag  = "output"
	formatFlag  = "format"
	shapeFlag   = "shape"
	minSizeFlag = "min-size"
	maxSizeFlag = "max-size"
)

func addExportFlags(flags *pflag.FlagSet) {
	flags.StringP(outputFlag, "o", "", "export destination: a file path or s3://bucket/key")
	flags.String(formatFlag, "", "export encoding, guessed from the output extension when empty")
	flags.String(shapeFlag, string(export.ShapeCluster), "record shape: cluster or sequence")
}

func addSizeFlags(flags *pflag.FlagSet) {
	flags.Int(minSizeFlag, 1, "smallest cluster size kept")
	flags.Int(maxSizeFlag, model.Unbounded, "largest cluster size kept, 0 for no bound")
}

func sizeRange() model.SizeRange {
	return model.SizeRange{Min: viper.GetInt(minSizeFlag), Max: viper.GetInt(maxSizeFlag)}
}

// newExporter reads the export flags. The encoding comes from --format or,
// failing that, from the output extension.
func newExporter(source string) (*export.Exporter, error) {
	var (
		format export.Format
		err    error
	)
	if name := viper.GetString(formatFlag); name != "" {
		format, err = export.ParseFormat(name)
	} else {
		format, err = export.FormatFromPath(viper.GetString(outputFlag))
	}
	if err != nil {
		return nil, err
	}

	shape, err := export.ParseShape(viper.GetString(shapeFlag))
	if err != nil {
		return nil, err
	}

	exp := export.New(format, shape)
	exp.Source = source
	return exp, nil
}
