// Package cli implements the command-line interface for ski-report.
//
// The cli package provides the Cobra-based CLI with three commands: send runs
// one bulletin and delivers it, preview shows the captions each channel would
// receive without producing the map, and status prints the last recorded run.
// It wires configuration, logging, metrics and storage around the bulletin
// runner.
package cli
