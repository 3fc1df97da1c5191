// Command finadvisor runs the finance assistant server and its calculators
// from the command line.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
