// Package waveform decodes binary waveform files written by circuit
// simulators (the .tr0, .ac0 and .sw0 family) and converts them to the
// SPICE3 raw interchange format.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	waveform/            Root package with Metadata, Result, DataTable and DataChunk
//	├── tr0/             Full reads, streaming cursors and raw conversion
//	├── header/          Metadata block parsing and encoding
//	├── numeric/         Block payloads to float64, sequential or parallel
//	├── raw/             SPICE3 raw writer and reader, optional zstd
//	├── export/          Streamed Parquet export through Arrow
//	├── metrics/         Prometheus collectors for reader activity
//	├── config/          YAML configuration for wavetool
//	├── logging/         zap logger construction
//	├── errors/          Structured error types for debugging
//	└── internal/        Block framing, memory mapping and test fixtures
//
// # Quick Start
//
// Read a whole file:
//
//	res, err := tr0.Read("inverter.tr0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, _ := res.Get("v(out)")
//	fmt.Println(res.Analysis, out.Len())
//
// Stream a large file in chunks of at least 10000 rows:
//
//	c, err := tr0.OpenStream("big.tr0", tr0.WithSignals("v(out)"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	for chunk, err := range c.Chunks(10000) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(chunk.Table, chunk.Start, chunk.End)
//	}
//
// Convert to raw, one file per sweep table:
//
//	paths, err := tr0.Convert("amp.ac0", "amp.raw")
//
// # File Layout
//
// A file is a sequence of blocks, each framed by a 16-byte header and a
// 4-byte tail that repeats the payload length. The first blocks hold the
// text metadata up to the "$&%#" terminator; the rest hold 32-bit or
// 64-bit floats, row-major, with each sweep table closed by a value
// above 9e29. Byte order is detected from the first block header.
//
// # Thread Safety
//
// Result, DataTable and DataChunk are immutable once returned and safe to
// share. A tr0.Cursor is NOT thread-safe and should be used by a single
// goroutine.
package waveform
