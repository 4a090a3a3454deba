// Command rakectl tracks events and manages super properties from the
// command line. It is mostly useful for checking what documents a given
// configuration produces.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
