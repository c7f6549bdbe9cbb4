// Package main is the entry point for the Buzzy notifier load test binary.
// It provides subcommands for different load testing scenarios:
//
//   - saturate: Subscriber saturation test — opens N idle subscriptions
//   - fanout:   Fan-out latency test — measures publish-to-delivery latency
//
// Usage:
//
//	loadtest <command> [options]
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "saturate":
		runSaturate(os.Args[2:])
	case "fanout":
		runFanout(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: loadtest <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  saturate    Subscriber saturation test — opens N idle subscriptions")
	fmt.Println("  fanout      Fan-out latency test — subscribers receive published events")
	fmt.Println()
	fmt.Println("Run 'loadtest <command> -h' for command-specific options.")
}
