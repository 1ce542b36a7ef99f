package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/waveform/export"
	"github.com/wippyai/waveform/tr0"
)

func (a *app) exportCommand() *cobra.Command {
	var (
		chunkSize int
		signals   []string
		codec     string
	)
	cmd := &cobra.Command{
		Use:   "export <input> <output.parquet>",
		Short: "Stream a waveform file into Parquet",
		Long: `Stream a waveform file into a Parquet file, one row group per chunk.
Complex signals become <name>.re and <name>.im columns.

Example:
  wavetool export --signals 'v(out)' --codec zstd amp.ac0 amp.parquet`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("codec") {
				codec = a.cfg.Output.ParquetCodec
			}
			c, err := tr0.OpenStream(args[0], a.streamOptions(cmd, chunkSize, signals)...)
			if err != nil {
				return err
			}
			defer c.Close()

			sum, err := export.WriteFile(args[1], c, export.Options{
				Logger:  a.log,
				Metrics: a.metrics,
				Codec:   codec,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows in %d row groups\n", args[1], sum.Rows, sum.Chunks)
			return nil
		},
	}
	cmd.Flags().IntVar(&chunkSize, "chunk-size", tr0.DefaultChunkSize, "Minimum rows per row group")
	cmd.Flags().StringSliceVar(&signals, "signals", nil, "Signals to export (the scale is always included)")
	cmd.Flags().StringVar(&codec, "codec", "snappy", "Parquet compression (snappy, zstd, none)")
	return cmd
}
