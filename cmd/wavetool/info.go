package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wippyai/waveform"
	"github.com/wippyai/waveform/raw"
	"github.com/wippyai/waveform/tr0"
)

func (a *app) infoCommand() *cobra.Command {
	var headerOnly bool
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Print the header and table summary of a waveform or raw file",
		Long: `Print the header of a waveform file and the row count of each table.
Files ending in .raw or .raw.zst are read as SPICE3 raw files.

Example:
  wavetool info inverter.tr0
  wavetool info --header-only big.tr0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()

			if isRaw(path) {
				res, err := raw.ReadFile(path)
				if err != nil {
					return err
				}
				printMetadata(out, path, &res.Metadata)
				printTables(out, res)
				return nil
			}

			if headerOnly {
				c, err := tr0.OpenStream(path, a.readOptions()...)
				if err != nil {
					return err
				}
				defer c.Close()
				printMetadata(out, path, c.Metadata())
				return nil
			}

			res, err := tr0.Read(path, a.readOptions()...)
			if err != nil {
				return err
			}
			printMetadata(out, path, &res.Metadata)
			printTables(out, res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&headerOnly, "header-only", false, "Parse the header without decoding data blocks")
	return cmd
}

func printMetadata(w io.Writer, path string, m *waveform.Metadata) {
	version := "raw"
	if m.Version != 0 {
		version = fmt.Sprintf("%s (%s)", m.Version.Token(), m.Version)
	}
	fmt.Fprintf(w, "File:      %s\n", path)
	fmt.Fprintf(w, "Title:     %s\n", m.Title)
	fmt.Fprintf(w, "Date:      %s\n", m.Date)
	fmt.Fprintf(w, "Version:   %s\n", version)
	fmt.Fprintf(w, "Analysis:  %s\n", m.Analysis)
	fmt.Fprintf(w, "Scale:     %s\n", m.ScaleName)
	fmt.Fprintf(w, "Complex:   %t\n", m.Complex)
	fmt.Fprintf(w, "Variables: %d (%d node, %d probe)\n",
		len(m.Variables), m.NumVariables-1, m.NumProbes)
	if m.Swept() {
		fmt.Fprintf(w, "Sweep:     %s (%d tables)\n", m.SweepName, m.SweepCount)
	}
	fmt.Fprintln(w)
	for i, v := range m.Variables {
		kind := "real"
		if m.IsComplexColumn(i) {
			kind = "complex"
		}
		fmt.Fprintf(w, "  %3d  %-24s %-10s %s\n", i, v.Name, v.Kind, kind)
	}
}

func printTables(w io.Writer, r *waveform.Result) {
	fmt.Fprintln(w)
	for i, t := range r.Tables {
		if t.SweepValue != nil {
			fmt.Fprintf(w, "Table %d: %d rows, %s = %g\n", i, t.Len(), r.SweepName, *t.SweepValue)
			continue
		}
		fmt.Fprintf(w, "Table %d: %d rows\n", i, t.Len())
	}
}
