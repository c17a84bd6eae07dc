// Package internal contains the core implementation packages for uscfprep.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the uscfprep CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - config: Configuration management with validation and security
//   - document: Calculation document parsing and scaffolding
//   - params: Namelist parameter normalization and reserved key enforcement
//   - qpoints: Q-point mesh validation
//   - namelist: Deterministic Fortran namelist serialization
//   - nodes: Computers, codes, and remote folder records
//   - provenance: Parent calculation resolution over the provenance graph
//   - uscf: Input deck generation, staging, and submission plans
//   - watcher: File system monitoring with debouncing
//   - logging: Structured logging built on slog
//   - errors: Coded errors shared across the pipeline
//
// # Design Principles
//
// All internal packages follow these design principles:
//
//   - Validation before staging, so a bad document never writes files
//   - Deterministic output, so identical documents produce identical decks
//   - Explicit error codes that identify which check rejected an input
//   - Testability with comprehensive unit and property test coverage
//   - Observability with structured logging
//
// # Inter-Package Communication
//
// Packages communicate through well-defined interfaces:
//
//   - Document parses YAML and hands validated inputs to uscf
//   - Uscf drives params, qpoints, provenance, and namelist in order
//   - Provenance resolves the parent pw.x calculation and its host
//   - Namelist renders the normalized parameters into the input deck
//   - Watcher monitors the document and triggers re-preparation
//
// # Security Considerations
//
// Security is implemented at multiple layers:
//
//   - Config package validates all configuration inputs
//   - Params package rejects reserved keys the tool itself controls
//   - Staging paths are validated against traversal attacks
//   - All packages sanitize user inputs before they reach the deck
//
// # Testing Strategy
//
// Each package includes comprehensive test coverage:
//
//   - Unit tests for individual functions and methods
//   - Property tests for normalization and serialization invariants
//   - Fuzz tests for parser entry points
//   - Security tests for all hardening measures
//
// For detailed documentation, see the individual package documentation.
package internal
