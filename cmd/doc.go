// Package cmd provides the command-line interface for uscfprep.
//
// This package implements all CLI commands using the Cobra framework,
// covering the preparation workflow for uscf.x Hubbard parameter
// calculations end to end.
//
// # Available Commands
//
//   - init: Initialize a workspace with a starter document and configuration
//   - validate: Dry-run documents against an in-memory staging area
//   - prepare: Write the input deck and emit the submission plan
//   - config: Validate and show the resolved configuration
//   - doctor: Diagnose the preparation environment
//   - version: Show build and version information
//
// # Command Examples
//
//	// Initialize a new workspace
//	uscfprep init fe2o3-hubbard
//
//	// Validate the configured document
//	uscfprep validate
//
//	// Validate several documents as JSON
//	uscfprep validate a.yml b.yml --format json
//
//	// Prepare a specific document with a JSON plan
//	uscfprep prepare runs/fe2o3/calc.yml --format json
//
//	// Re-prepare whenever the document changes
//	uscfprep prepare --watch
//
//	// Diagnose the environment
//	uscfprep doctor --verbose
//
// # Security Considerations
//
// All commands validate path arguments before they reach the filesystem
// layer:
//
//   - Shell metacharacter rejection for flag and positional paths
//   - Path traversal protection for staging overrides
//   - Reserved-key enforcement inside the preparation pipeline itself
//
// # Configuration Integration
//
// Commands respect configuration from multiple sources in order of precedence:
//
//  1. Command-line flags (highest priority)
//  2. Environment variables (USCFPREP_*)
//  3. Configuration file (.uscfprep.yml)
//  4. Default values (lowest priority)
//
// # Error Handling
//
// All commands provide structured error reporting with:
//
//   - Clear error messages for common issues
//   - Detailed logging in debug mode
//   - Exit codes following Unix conventions
//   - Graceful handling of interrupts (Ctrl+C)
//
// For detailed usage of individual commands, see their respective documentation.
package cmd
