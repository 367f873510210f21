// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps an injectable CommandRunner with zap lifecycle logging
// and typed failures, while OSCommandRunner performs the actual os/exec call.
// The git-backed version control provider drives clone, checkout, remote, and
// pull through this package so every invocation is observable and testable.
package execshell
