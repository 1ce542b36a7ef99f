package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseFrame,
				Kind:   KindFormat,
				Offset: 4096,
				Block:  3,
				Detail: "tail mismatch",
			},
			contains: []string{"[frame]", "format", "offset 4096", "block 3", "tail mismatch"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindFormat,
				Offset: -1,
			},
			contains: []string{"[decode]", "format"},
		},
		{
			name: "error with token",
			err:  UnsupportedVersion("1234"),
			contains: []string{
				"[header]", "unsupported_version", `token "1234"`, "unknown format version",
			},
		},
		{
			name: "error with cause",
			err:  IO(PhaseOpen, errors.New("permission denied"), "open sim.tr0"),
			contains: []string{
				"[open]", "io", "open sim.tr0", "caused by", "permission denied",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_NoOffsetWhenUnknown(t *testing.T) {
	msg := Format(PhaseHeader, "missing terminator").Error()
	if strings.Contains(msg, "offset") {
		t.Errorf("unexpected offset in %q", msg)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := New(PhaseFrame, KindIO).Cause(cause).Build()

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("errors.Is should find the cause")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestError_Is(t *testing.T) {
	err := Format(PhaseFrame, "bad marker")

	if !errors.Is(err, ErrFormat) {
		t.Error("kind sentinel should match any phase")
	}
	if errors.Is(err, ErrIO) {
		t.Error("different kind should not match")
	}
	if !errors.Is(err, &Error{Phase: PhaseFrame, Kind: KindFormat}) {
		t.Error("same phase and kind should match")
	}
	if errors.Is(err, &Error{Phase: PhaseHeader, Kind: KindFormat}) {
		t.Error("different phase should not match")
	}

	wrapped := fmt.Errorf("read sim.tr0: %w", err)
	if !errors.Is(wrapped, ErrFormat) {
		t.Error("sentinel should match through fmt wrapping")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(fmt.Errorf("outer: %w", DataIntegrity(PhaseRead, "partial row"))); got != KindDataIntegrity {
		t.Errorf("KindOf = %q, want %q", got, KindDataIntegrity)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf plain error = %q, want empty", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("short read")
	err := New(PhaseFrame, KindFormat).
		Offset(16).
		Block(2).
		Token("0x04000000").
		Detail("marker %d of %d", 1, 2).
		Cause(cause).
		Build()

	if err.Phase != PhaseFrame {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseFrame)
	}
	if err.Offset != 16 || err.Block != 2 {
		t.Errorf("Offset/Block = %d/%d, want 16/2", err.Offset, err.Block)
	}
	if err.Token != "0x04000000" {
		t.Errorf("Token = %q", err.Token)
	}
	if err.Detail != "marker 1 of 2" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Cause != cause {
		t.Error("Cause not set")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err  *Error
		kind Kind
	}{
		{IO(PhaseWrite, io.ErrShortWrite, "write"), KindIO},
		{Format(PhaseHeader, "field %q", "nvars"), KindFormat},
		{UnsupportedVersion("0000"), KindUnsupportedVersion},
		{DataIntegrity(PhaseStream, "no sentinel"), KindDataIntegrity},
		{InvalidInput(PhaseConfig, "bad level"), KindInvalidInput},
		{NotFound(PhaseRead, "variable", "v(out)"), KindNotFound},
	}
	for _, tt := range tests {
		if tt.err.Kind != tt.kind {
			t.Errorf("%v: kind = %q, want %q", tt.err, tt.err.Kind, tt.kind)
		}
		if tt.err.Offset != -1 {
			t.Errorf("%v: offset = %d, want -1", tt.err, tt.err.Offset)
		}
	}
}
