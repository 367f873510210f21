// Package envfile parses `-envs.EXAMPLE` environment templates and writes
// them into a configuration directory as live environment files.
package envfile
