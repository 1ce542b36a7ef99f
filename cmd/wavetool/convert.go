package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/waveform/tr0"
)

func (a *app) convertCommand() *cobra.Command {
	var compress bool
	cmd := &cobra.Command{
		Use:   "convert <input> <output.raw>",
		Short: "Convert a waveform file to SPICE3 raw",
		Long: `Convert a waveform file to the SPICE3 binary raw format. A swept file
produces one raw file per sweep point, named <stem>_sweep<i>.raw.

Example:
  wavetool convert inverter.tr0 inverter.raw
  wavetool convert --compress amp.ac0 amp.raw.zst`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("compress") {
				compress = a.cfg.Output.Compress
			}
			opts := append(a.readOptions(), tr0.WithCompression(compress))

			paths, err := tr0.Convert(args[0], args[1], opts...)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&compress, "compress", false, "Write zstd-compressed output")
	return cmd
}
