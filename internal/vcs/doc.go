// Package vcs declares the narrow version control surface that repository
// orchestration depends on.
//
// Provider clones and opens repositories, Handle acts on an opened working
// copy, and Remote pulls from the primary remote. The gitcli subpackage drives
// the git executable; the gogit subpackage drives go-git in process.
package vcs
