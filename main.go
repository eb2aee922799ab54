// Package main provides the entry point for BridgeSim.
// BridgeSim is a cycle-accurate multi-master bus bridge simulator built
// on Akita.
//
// For the full CLI, use: go run ./cmd/bridgesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("BridgeSim - Multi-Master Bus Bridge Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: bridgesim [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config      Path to bridge configuration JSON file")
	fmt.Println("  -cycles      Number of master-clock cycles to simulate")
	fmt.Println("  -seed        Stimulus seed")
	fmt.Println("  -waitstates  Wait states inserted by every target access")
	fmt.Println("  -v           Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/bridgesim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/bridgesim' instead.")
	}
}
