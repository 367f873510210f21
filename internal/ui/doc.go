// Package ui renders command lifecycle events for people watching the console.
//
// Structured logs keep the full field set; the console observer only prints the
// short clone, checkout, and pull messages.
package ui
