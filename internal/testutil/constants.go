// Package testutil provides common constants and utilities for tests
package testutil

const (
	// TestStarCount is a typical star count for test repositories
	TestStarCount = 100

	// DefaultRepoFullName is the full name given to repositories built by NewRepo
	DefaultRepoFullName = "test/repo"
)
