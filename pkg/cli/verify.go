package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yumyai/uniref90/pkg/model"
	"github.com/yumyai/uniref90/pkg/render"
)

const rowsFlag = "rows"

func NewVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that rows follow the one-cluster-per-row layout",
		Long: `Read the first --rows rows and check that each row's accession, sequence,
description and index arrays have the same length. Also reports how many rows
mix protein names and the size distribution. Exits non-zero on mismatched rows.`,
		Args: cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindFlags(cmd.Flags(), rowsFlag, jsonFlag)
		},
		RunE: runVerify,
	}

	cmd.Flags().Int(rowsFlag, 100, "rows to check, 0 for the whole split")
	cmd.Flags().Bool(jsonFlag, false, "print JSON instead of a report")

	return cmd
}

func runVerify(cmd *cobra.Command, _ []string) error {
	v, source, err := openView()
	if err != nil {
		return err
	}

	report, err := v.Verify(cmd.Context(), viper.GetInt(rowsFlag))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if viper.GetBool(jsonFlag) {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "Checked %d rows of %s\n", report.Rows, source)
		fmt.Fprintf(out, "  Mismatched rows:      %d\n", len(report.Ragged))
		for _, msg := range report.RaggedError {
			fmt.Fprintf(out, "    %s\n", msg)
		}
		fmt.Fprintf(out, "  Truncated rows:       %d\n", len(report.Truncated))
		for _, msg := range report.TruncatedError {
			fmt.Fprintf(out, "    %s\n", msg)
		}
		fmt.Fprintf(out, "  Empty rows:           %d\n", report.Empty)
		fmt.Fprintf(out, "  Single-protein rows:  %d\n", report.SingleProtein)
		fmt.Fprintf(out, "  Mixed-protein rows:   %d\n", report.MixedProtein)
		if err := render.RenderStatistics(out, report.Sizes); err != nil {
			return err
		}
	}

	if !report.OK() {
		return fmt.Errorf("%w: %d of %d rows", model.ErrRaggedRow, len(report.Ragged), report.Rows)
	}
	return nil
}
