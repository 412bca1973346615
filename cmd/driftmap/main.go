// Command driftmap is a command-line interface for the driftmap ocean
// radionuclide particle-transport engine.
package main

import (
	"fmt"
	"os"

	"github.com/oceantracer/driftmap/driftctl"
)

func main() {
	cfg := driftctl.InitializeConfig()
	if err := cfg.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
