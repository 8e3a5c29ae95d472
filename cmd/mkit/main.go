// Command mkit applies the conditioning transforms to raw float files,
// reports the round-trip error of each inverse, and inspects persisted
// metadata records.
//
// Usage:
//
//	mkit log --type float temperature.bin pressure.bin
//	mkit norm --type double --dims 256x256x64 --record norm.rec density.bin
//	mkit sparse --eps 1e-9 --out-dir conditioned/ velocity.bin
//	mkit inspect norm.rec
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
