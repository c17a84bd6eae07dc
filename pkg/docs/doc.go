// Package uscfprep provides a CLI tool that prepares uscf.x input decks
// for Hubbard parameter calculations with Quantum ESPRESSO.
//
// Uscfprep turns a YAML calculation document into everything a scheduler
// needs to submit a linear response run: a validated INPUTUSCF namelist,
// the q-point card, and a transfer plan describing which files to copy
// from the parent pw.x calculation and which to retrieve afterwards.
//
// # Key Features
//
//   - Parameter Normalization: Case folding and reserved key enforcement for namelist inputs
//   - Parent Resolution: Provenance-based lookup of the parent pw.x calculation and its host
//   - Deterministic Decks: Identical documents always serialize to byte-identical input files
//   - Transfer Plans: Remote copy, retrieve, and command line instructions for the scheduler
//   - File Watching: Re-preparation on document changes with debouncing
//   - Security: Path traversal protection and input validation on every external value
//
// # Quick Start
//
//	// Initialize a new uscfprep workspace
//	uscfprep init
//
//	// Check the calculation document without writing anything
//	uscfprep validate
//
//	// Write the input deck and transfer plan
//	uscfprep prepare
//
//	// Re-prepare whenever the document changes
//	uscfprep prepare --watch
//
//	// Diagnose configuration and environment problems
//	uscfprep doctor
//
// # Architecture
//
// The uscfprep module is organized into several core components:
//
//   - CLI Commands (cmd/): Cobra-based command interface
//   - Calculation Documents (internal/document/): YAML parsing and scaffolding
//   - Parameter Handling (internal/params/): Normalization and reserved key checks
//   - Namelist Serialization (internal/namelist/): Fortran namelist rendering
//   - Provenance (internal/provenance/): Parent calculation resolution
//   - Deck Generation (internal/uscf/): Staging, deck assembly, and submission plans
//   - File Watcher (internal/watcher/): Real-time file system monitoring
//   - Configuration (internal/config/): Viper-based configuration management
//
// # Security
//
// Uscfprep validates every value before it reaches a staged file:
//
//   - Reserved namelist keys cannot be overridden from documents
//   - Path traversal protection on staging and plan locations
//   - Shell metacharacter rejection on all path inputs
//   - Host consistency checks between code and parent calculation
//
// # Configuration
//
// Uscfprep supports configuration through multiple sources:
//
//   - Configuration file (.uscfprep.yml)
//   - Environment variables (USCFPREP_*)
//   - Command-line flags
//
// Example configuration:
//
//	document:
//	  path: calc.yml
//
//	staging:
//	  dir: ./staging
//
//	plan:
//	  file: plan.yml
//
//	logging:
//	  level: info
//	  format: text
//
//	watch:
//	  debounce_ms: 300
//	  paths:
//	    - "./documents"
//
// # Testing
//
// The module includes comprehensive test coverage:
//
//   - Unit tests for individual components
//   - Property tests for normalization and serialization invariants
//   - Fuzz tests for the document and parameter parsers
//   - Security tests for all hardening measures
//   - Integration tests for the document-to-plan workflow
//
// For more information, see the individual package documentation.
package docs
