// Command klothreport prints KPI summaries of the KLOTH collection data and
// exports filtered views without running the dashboard server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
