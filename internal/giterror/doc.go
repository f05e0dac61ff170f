// Package giterror provides error inspection capabilities for GitHub API errors.
// It centralizes the logic for identifying the errors returned by the REST and
// GraphQL file listing clients and maps them onto the sentinel errors the CLI
// reports, eliminating string-based error checking throughout the codebase.
package giterror
