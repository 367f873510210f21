// Package cli constructs the reposet command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// around a repository set rooted in one directory.
package cli
