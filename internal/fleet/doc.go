// Package fleet manages a set of related repositories as a unit.
//
// A Repository derives its local path and remote addresses from a root
// directory and a shared HTTPS base URL, and delegates clone, checkout, and
// pull to a vcs.Provider. A Set applies those operations to its members in
// configuration order and stops at the first failure.
package fleet
