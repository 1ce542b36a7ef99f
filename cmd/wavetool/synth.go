package main

import (
	"encoding/binary"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/waveform"
	werrors "github.com/wippyai/waveform/errors"
	"github.com/wippyai/waveform/internal/fixture"
)

func (a *app) synthCommand() *cobra.Command {
	var (
		analysis    string
		version     string
		points      int
		signals     int
		sweepName   string
		sweepValues []float64
		bigEndian   bool
		blockValues int
	)
	cmd := &cobra.Command{
		Use:   "synth <output>",
		Short: "Write a synthetic waveform file",
		Long: `Write a synthetic transient or AC waveform file. Useful for exercising
readers and converters without simulator output at hand.

Example:
  wavetool synth --points 100000 --signals 4 big.tr0
  wavetool synth --analysis ac --version 2001 --sweep-name vdd --sweep-values 1.8,3.3 amp.ac0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseVersion(version)
			if err != nil {
				return err
			}
			if points < 0 || signals < 0 {
				return werrors.InvalidInput(werrors.PhaseWrite, "points and signals must not be negative")
			}

			var f *fixture.File
			switch analysis {
			case "transient", "tran":
				f = fixture.Transient(v, points, signals)
			case "ac":
				f = fixture.AC(v, points, signals)
			default:
				return werrors.New(werrors.PhaseWrite, werrors.KindInvalidInput).
					Token(analysis).
					Detail("unknown analysis").
					Build()
			}
			if sweepName != "" {
				if len(sweepValues) == 0 {
					return werrors.InvalidInput(werrors.PhaseWrite, "--sweep-name needs --sweep-values")
				}
				f = fixture.Sweep(f, sweepName, sweepValues...)
			}
			if bigEndian {
				f.Order = binary.BigEndian
			}
			f.BlockValues = blockValues

			if err := f.WriteFile(args[0]); err != nil {
				return werrors.IO(werrors.PhaseWrite, err, "write synthetic file")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d tables of %d rows, %d variables\n",
				args[0], len(f.Tables), points, len(f.Meta.Variables))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&analysis, "analysis", "transient", "Analysis type (transient, ac)")
	flags.StringVar(&version, "version", "9601", "Format version token (9007, 9601, 2001)")
	flags.IntVar(&points, "points", 1000, "Rows per table")
	flags.IntVar(&signals, "signals", 2, "Voltage signals besides the scale and probe")
	flags.StringVar(&sweepName, "sweep-name", "", "Sweep parameter name")
	flags.Float64SliceVar(&sweepValues, "sweep-values", nil, "Sweep values, one table each")
	flags.BoolVar(&bigEndian, "big-endian", false, "Write big-endian blocks")
	flags.IntVar(&blockValues, "block-values", fixture.DefaultBlockValues, "Values per data block")
	return cmd
}

func parseVersion(token string) (waveform.FormatVersion, error) {
	for _, v := range []waveform.FormatVersion{waveform.Legacy32, waveform.Standard32, waveform.Extended64} {
		if v.Token() == token {
			return v, nil
		}
	}
	return 0, werrors.UnsupportedVersion(token)
}
