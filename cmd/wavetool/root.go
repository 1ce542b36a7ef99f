package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/waveform/config"
	"github.com/wippyai/waveform/logging"
	"github.com/wippyai/waveform/metrics"
	"github.com/wippyai/waveform/tr0"
)

// app holds the state shared by every subcommand once the root command has
// loaded configuration.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	stdout   io.Writer

	configPath  string
	logLevel    string
	logFormat   string
	metricsFile string
	workers     int
}

func newApp() *app {
	return &app{
		cfg:    config.Default(),
		log:    zap.NewNop(),
		stdout: os.Stdout,
	}
}

// execute runs the command line and writes the metrics file, if any, even
// when the command fails.
func (a *app) execute(args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	err := root.Execute()
	if ferr := a.finish(); err == nil {
		err = ferr
	}
	return err
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "wavetool",
		Short: "Read and convert simulator waveform files",
		Long: `wavetool decodes binary waveform files (.tr0, .ac0, .sw0 and friends),
streams them in bounded chunks, and writes SPICE3 raw or Parquet output.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format (auto, console, json)")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
	flags.IntVar(&a.workers, "workers", 0, "Parallel block decoders (0 uses GOMAXPROCS)")

	root.AddCommand(
		a.infoCommand(),
		a.convertCommand(),
		a.streamCommand(),
		a.exportCommand(),
		a.synthCommand(),
		a.inspectCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		a.cfg.Logging.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		a.cfg.Logging.Format = a.logFormat
	}
	if flags.Changed("metrics-file") {
		a.cfg.Metrics.File = a.metricsFile
	}
	if flags.Changed("workers") {
		a.cfg.Decode.Workers = a.workers
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(logging.Config{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.log = log

	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.NewMetrics(a.registry, a.cfg.Metrics.Namespace)
	return nil
}

// readOptions returns decoder options from the loaded configuration.
// Stream settings are added by the commands that stream.
func (a *app) readOptions() []tr0.Option {
	opts := []tr0.Option{
		tr0.WithLogger(a.log),
		tr0.WithMetrics(a.metrics),
	}
	if a.cfg.Decode.Workers > 0 {
		opts = append(opts, tr0.WithWorkers(a.cfg.Decode.Workers))
	}
	return opts
}

// streamOptions adds the chunk size and projection, letting command flags
// override the configuration.
func (a *app) streamOptions(cmd *cobra.Command, chunkSize int, signals []string) []tr0.Option {
	if !cmd.Flags().Changed("chunk-size") {
		chunkSize = a.cfg.Stream.ChunkSize
	}
	if !cmd.Flags().Changed("signals") {
		signals = a.cfg.Stream.Signals
	}
	return append(a.readOptions(),
		tr0.WithChunkSize(chunkSize),
		tr0.WithSignals(signals...),
	)
}

func (a *app) finish() error {
	_ = a.log.Sync()
	if a.registry == nil || a.cfg.Metrics.File == "" {
		return nil
	}
	f, err := os.Create(a.cfg.Metrics.File)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	defer f.Close()
	return writeMetrics(f, a.registry)
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// isRaw reports whether path names an interchange file rather than a
// simulator waveform file.
func isRaw(path string) bool {
	path = strings.TrimSuffix(strings.ToLower(path), ".zst")
	return filepath.Ext(path) == ".raw"
}
