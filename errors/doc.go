// Package errors provides structured error types for the waveform module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the byte offset and block number where decoding stopped,
// the raw offending token if any, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseFrame, errors.KindFormat).
//		Offset(4096).
//		Block(3).
//		Detail("tail %d does not match length %d", tail, length).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnsupportedVersion("9999")
//	err := errors.DataIntegrity(errors.PhaseRead, "partial row at end of file")
//
// Kind sentinels match errors of that kind from any phase:
//
//	if errors.Is(err, werrors.ErrFormat) {
//	    // corrupted file, do not retry
//	}
//
// Nothing in the module retries on error; binary corruption is not transient.
package errors
