package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/waveform/tr0"
)

func (a *app) streamCommand() *cobra.Command {
	var (
		chunkSize int
		signals   []string
	)
	cmd := &cobra.Command{
		Use:   "stream <file>",
		Short: "Read a waveform file in chunks and print a line per chunk",
		Long: `Read a waveform file in bounded chunks of rows. Each output line shows
the chunk index, table, row count and the scale range it covers.

Example:
  wavetool stream --chunk-size 5000 --signals 'v(out)' inverter.tr0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := tr0.OpenStream(args[0], a.streamOptions(cmd, chunkSize, signals)...)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			scale := c.Metadata().ScaleName
			rows := 0
			for chunk, err := range c.Chunks(0) {
				if err != nil {
					return err
				}
				rows += chunk.Len()
				line := fmt.Sprintf("chunk %d table %d rows %d %s [%g, %g]",
					chunk.Index, chunk.Table, chunk.Len(), scale, chunk.Start, chunk.End)
				if chunk.SweepValue != nil {
					line += fmt.Sprintf(" sweep %g", *chunk.SweepValue)
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "total rows %d\n", rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&chunkSize, "chunk-size", tr0.DefaultChunkSize, "Minimum rows per chunk")
	cmd.Flags().StringSliceVar(&signals, "signals", nil, "Signals to read (the scale is always included)")
	return cmd
}
