// Package main provides the entry point for VulcanSim.
// VulcanSim builds and simulates a single-core memory hierarchy on Akita.
//
// For the full CLI, use: go run ./cmd/vulcansim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("VulcanSim - Single-Core Memory Hierarchy Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: vulcansim [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config     Path to hierarchy configuration JSON file")
	fmt.Println("  -accesses   Number of memory accesses to simulate")
	fmt.Println("  -v          Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/vulcansim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/vulcansim' instead.")
	}
}
