// Command wavetool reads simulator waveform files, converts them to raw or
// Parquet, and pages through them interactively.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
